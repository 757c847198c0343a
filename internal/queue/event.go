// Package queue carries booking events over RabbitMQ: a publisher used by
// the booking workflow and a consumer that appends them to an audit log.
package queue

import "time"

// StatusChangedQueue is the durable queue booking status events go to.
const StatusChangedQueue = "booking.status_changed"

// BookingStatusChanged is published after a booking status transition is
// persisted.  It carries enough for consumers to log or notify without
// querying the database.
type BookingStatusChanged struct {
	BookingID   string    `json:"booking_id"`
	BookingType string    `json:"booking_type"`
	TouristID   string    `json:"tourist_id"`
	GuideID     string    `json:"guide_id,omitempty"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ChangedBy   string    `json:"changed_by"`
	Role        string    `json:"role"`
	TotalPrice  string    `json:"total_price"`
	ChangedAt   time.Time `json:"changed_at"`
}
