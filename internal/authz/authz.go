// Package authz is the single authorization gate used by every service
// operation.  An operation names an Action; the policy table maps each
// action to the roles allowed to perform it and, optionally, whether an
// admin skips the ownership predicates supplied by the caller.
package authz

import (
	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID string
	Role   model.Role
	Email  string
}

// Action names an authorizable operation.
type Action string

const (
	ListUsers  Action = "users:list"
	UpdateUser Action = "users:update"
	ViewSelf   Action = "users:me"

	CreateTour   Action = "tours:create"
	ListOwnTours Action = "tours:mine"
	ManageTour   Action = "tours:manage"

	CreateBooking     Action = "bookings:create"
	ViewBooking       Action = "bookings:view"
	ListBookings      Action = "bookings:list"
	TransitionBooking Action = "bookings:transition"
	GuideQueue        Action = "bookings:guide-queue"
	TouristLookup     Action = "bookings:tourist-lookup"
	ListSettlement    Action = "bookings:settlement"

	CreatePaymentIntent Action = "payments:intent"
	SavePayment         Action = "payments:save"
	ViewPayment         Action = "payments:view"
)

// Policy describes who may perform an action.
type Policy struct {
	Roles []model.Role
	// AdminOverride lets ADMIN callers skip ownership predicates.
	AdminOverride bool
	// Denied is returned when the caller's role is not in Roles.
	Denied string
	// NotOwner is returned when an ownership predicate fails.
	NotOwner string
}

func (p Policy) allows(r model.Role) bool {
	for _, v := range p.Roles {
		if v == r {
			return true
		}
	}
	return false
}

var (
	anyRole     = []model.Role{model.RoleAdmin, model.RoleGuide, model.RoleTourist}
	touristOnly = []model.Role{model.RoleTourist}
	guideOnly   = []model.Role{model.RoleGuide}
)

var policies = map[Action]Policy{
	ListUsers:  {Roles: []model.Role{model.RoleAdmin}, Denied: "only admins can list users"},
	UpdateUser: {Roles: anyRole, AdminOverride: true, Denied: "you are not permitted to update users", NotOwner: "you can only update your own profile"},
	ViewSelf:   {Roles: anyRole, Denied: "you are not permitted to view this route"},

	CreateTour:   {Roles: guideOnly, Denied: "only guides can create tours"},
	ListOwnTours: {Roles: guideOnly, Denied: "only guides can view their tours"},
	ManageTour:   {Roles: guideOnly, Denied: "only guides can modify tours", NotOwner: "tour not found or unauthorized"},

	CreateBooking:     {Roles: touristOnly, Denied: "only tourists can create bookings"},
	ViewBooking:       {Roles: anyRole, AdminOverride: true, Denied: "unauthorized", NotOwner: "you are not allowed to view this booking"},
	ListBookings:      {Roles: anyRole, Denied: "unauthorized"},
	TransitionBooking: {Roles: []model.Role{model.RoleGuide, model.RoleTourist}, Denied: "only tourists and guides can change booking status", NotOwner: "unauthorized"},
	GuideQueue:        {Roles: guideOnly, Denied: "only guides can view this queue"},
	TouristLookup:     {Roles: touristOnly, Denied: "only tourists can look up their bookings"},
	ListSettlement:    {Roles: anyRole, Denied: "unauthorized"},

	CreatePaymentIntent: {Roles: touristOnly, Denied: "only tourists can start a payment"},
	SavePayment:         {Roles: touristOnly, Denied: "only tourists can pay for bookings", NotOwner: "you can only pay for your own bookings"},
	ViewPayment:         {Roles: anyRole, AdminOverride: true, Denied: "unauthorized", NotOwner: "you are not allowed to view this payment"},
}

// PolicyFor returns the policy registered for a, if any.
func PolicyFor(a Action) (Policy, bool) {
	p, ok := policies[a]
	return p, ok
}

// Ownership is a predicate over the caller evaluated after the role check.
type Ownership func(Caller) bool

// Is holds when the caller is the user with the given id.
func Is(userID string) Ownership {
	return func(c Caller) bool { return userID != "" && c.UserID == userID }
}

// AnyOf holds when at least one predicate holds.
func AnyOf(preds ...Ownership) Ownership {
	return func(c Caller) bool {
		for _, p := range preds {
			if p(c) {
				return true
			}
		}
		return false
	}
}

// Authorize permits or denies c performing a.  All ownership predicates
// must hold unless the policy grants admins an override.
func Authorize(c Caller, a Action, owns ...Ownership) error {
	p, ok := policies[a]
	if !ok {
		return apperr.Permission("action %s is not permitted", a)
	}
	if !p.allows(c.Role) {
		return apperr.Permission("%s", p.Denied)
	}
	if p.AdminOverride && c.Role == model.RoleAdmin {
		return nil
	}
	for _, o := range owns {
		if !o(c) {
			return apperr.Permission("%s", p.NotOwner)
		}
	}
	return nil
}
