package model

import "time"

// PaymentCompleted is the receipt status written after a successful charge.
const PaymentCompleted = "completed"

// Payment is a receipt for a processed charge.  It references a booking
// but the booking does not own it.
type Payment struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"bookingId"`
	TouristEmail  string    `json:"touristEmail"`
	Amount        Money     `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
	PaymentDate   time.Time `json:"paymentDate"`
}

// Settlement describes the booking-side effect of recording a payment.
// From guards the write: the booking status must still equal From.
type Settlement struct {
	BookingID string
	From      BookingStatus
	To        BookingStatus
	Entry     *StatusEntry
}
