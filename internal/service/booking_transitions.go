package service

import (
	"time"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// rule is the outcome of one (role, from, to) cell.  A zero deny allows the
// move, subject to guard.
type rule struct {
	deny   apperr.Kind
	reason string
	guard  func(b *model.Booking, now time.Time) error
}

type edge struct {
	role     model.Role
	from, to model.BookingStatus
}

const (
	msgCancelLocked      = "can not cancel after booking is confirmed or completed"
	msgTouristConfirm    = "tourist cannot confirm booking"
	msgTouristComplete   = "tourist can not mark booking complete"
	msgCompleteEarly     = "cannot complete booking before confirmed"
	msgCompleteBeforeDay = "cannot complete booking before tour date"
)

var (
	allow = rule{}

	cancelLocked    = rule{deny: apperr.KindValidation, reason: msgCancelLocked}
	touristConfirm  = rule{deny: apperr.KindPermission, reason: msgTouristConfirm}
	touristComplete = rule{deny: apperr.KindPermission, reason: msgTouristComplete}
	completeEarly   = rule{deny: apperr.KindValidation, reason: msgCompleteEarly}
	completeOnDay   = rule{guard: tourDatePassed}
)

// transitions lists every move a tourist or guide may request.  Requests
// for the current status never reach the table.
var transitions = map[edge]rule{
	{model.RoleTourist, model.StatusPending, model.StatusCancelled}:   allow,
	{model.RoleTourist, model.StatusPending, model.StatusConfirmed}:   touristConfirm,
	{model.RoleTourist, model.StatusPending, model.StatusCompleted}:   touristComplete,
	{model.RoleTourist, model.StatusConfirmed, model.StatusCancelled}: cancelLocked,
	{model.RoleTourist, model.StatusConfirmed, model.StatusCompleted}: touristComplete,
	{model.RoleTourist, model.StatusCompleted, model.StatusCancelled}: cancelLocked,
	{model.RoleTourist, model.StatusCompleted, model.StatusConfirmed}: touristConfirm,
	{model.RoleTourist, model.StatusCancelled, model.StatusConfirmed}: touristConfirm,
	{model.RoleTourist, model.StatusCancelled, model.StatusCompleted}: touristComplete,

	{model.RoleGuide, model.StatusPending, model.StatusCancelled}:   allow,
	{model.RoleGuide, model.StatusPending, model.StatusConfirmed}:   allow,
	{model.RoleGuide, model.StatusPending, model.StatusCompleted}:   completeEarly,
	{model.RoleGuide, model.StatusConfirmed, model.StatusCancelled}: cancelLocked,
	{model.RoleGuide, model.StatusConfirmed, model.StatusCompleted}: completeOnDay,
	{model.RoleGuide, model.StatusCompleted, model.StatusCancelled}: cancelLocked,
	{model.RoleGuide, model.StatusCancelled, model.StatusCompleted}: completeEarly,
	// COMPLETED -> CONFIRMED and CANCELLED -> CONFIRMED fall through to the
	// terminal-state error.
}

// requestable are the statuses a caller may ask for.
var requestable = map[model.BookingStatus]bool{
	model.StatusCancelled: true,
	model.StatusConfirmed: true,
	model.StatusCompleted: true,
}

// decide evaluates the table for a move of b to `to` by role at now.  It
// returns nil when the move is allowed.
func decide(role model.Role, b *model.Booking, to model.BookingStatus, now time.Time) error {
	r, ok := transitions[edge{role, b.Status, to}]
	if !ok {
		return apperr.Validation("booking is %s and cannot move to %s", b.Status, to)
	}
	if r.deny != 0 {
		return &apperr.Error{Kind: r.deny, Message: r.reason}
	}
	if r.guard != nil {
		return r.guard(b, now)
	}
	return nil
}

func tourDatePassed(b *model.Booking, now time.Time) error {
	if now.Before(b.TourDate) {
		return apperr.Validation(msgCompleteBeforeDay)
	}
	return nil
}
