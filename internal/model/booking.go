package model

import "time"

// BookingKind distinguishes a booked tour package from an hourly guide hire.
type BookingKind string

const (
	KindTourPackage BookingKind = "TOUR_PACKAGE"
	KindGuideHire   BookingKind = "GUIDE_HIRE"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Statuses lists every booking status in lifecycle order.
var Statuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// Terminal reports whether no further transition can leave s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentStatus records whether a booking has been settled.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// StatusEntry is one line of a booking's audit trail.
type StatusEntry struct {
	Status    BookingStatus `json:"status"`
	ChangedBy string        `json:"changedBy"`
	Role      Role          `json:"role"`
	ChangedAt time.Time     `json:"changedAt"`
}

// Booking mirrors the `bookings` table together with its status history.
//
// Exactly one of TourID or (GuideID, HourlyRate, Hours) is populated,
// depending on Kind.  TourGuideID is not stored on the booking: it is the
// owner of the referenced tour, joined in when the booking is loaded.
type Booking struct {
	ID            string        `json:"id"`
	Kind          BookingKind   `json:"bookingType"`
	TouristID     string        `json:"touristId"`
	TourID        *string       `json:"tourId,omitempty"`
	GuideID       *string       `json:"guideId,omitempty"`
	HourlyRate    *Money        `json:"hourlyRate,omitempty"`
	Hours         *Money        `json:"hours,omitempty"`
	TourGuideID   *string       `json:"-"`
	TotalPrice    Money         `json:"totalPrice"`
	TourDate      time.Time     `json:"tourDate"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	StatusHistory []StatusEntry `json:"statusHistory"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

// AssignedGuide returns the guide responsible for the booking: the hired
// guide for GUIDE_HIRE and the tour owner for TOUR_PACKAGE.  It returns ""
// when the reference could not be resolved.
func (b *Booking) AssignedGuide() string {
	switch b.Kind {
	case KindGuideHire:
		if b.GuideID != nil {
			return *b.GuideID
		}
	case KindTourPackage:
		if b.TourGuideID != nil {
			return *b.TourGuideID
		}
	}
	return ""
}

// BookingView is a booking with the parties and tour joined in for display.
type BookingView struct {
	Booking
	Tourist *Contact  `json:"tourist,omitempty"`
	Guide   *Contact  `json:"guide,omitempty"`
	Tour    *TourInfo `json:"tour,omitempty"`
}

// TourInfo is the part of a tour shown next to a booking.
type TourInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`
	Duration string `json:"duration,omitempty"`
}
