package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

func TestAuthorize(t *testing.T) {
	tourist := authz.Caller{UserID: "t1", Role: model.RoleTourist}
	guide := authz.Caller{UserID: "g1", Role: model.RoleGuide}
	admin := authz.Caller{UserID: "a1", Role: model.RoleAdmin}

	tests := []struct {
		name    string
		caller  authz.Caller
		action  authz.Action
		owns    []authz.Ownership
		allowed bool
	}{
		{name: "TouristCreatesBooking", caller: tourist, action: authz.CreateBooking, allowed: true},
		{name: "GuideCannotCreateBooking", caller: guide, action: authz.CreateBooking},
		{name: "AdminCannotCreateBooking", caller: admin, action: authz.CreateBooking},
		{name: "AdminListsUsers", caller: admin, action: authz.ListUsers, allowed: true},
		{name: "TouristCannotListUsers", caller: tourist, action: authz.ListUsers},
		{name: "OwnerViewsBooking", caller: tourist, action: authz.ViewBooking, owns: []authz.Ownership{authz.Is("t1")}, allowed: true},
		{name: "StrangerViewsBooking", caller: tourist, action: authz.ViewBooking, owns: []authz.Ownership{authz.Is("t2")}},
		{name: "AdminOverridesOwnership", caller: admin, action: authz.ViewBooking, owns: []authz.Ownership{authz.Is("t2")}, allowed: true},
		{name: "AnyOfMatchesGuide", caller: guide, action: authz.ViewBooking, owns: []authz.Ownership{authz.AnyOf(authz.Is("t1"), authz.Is("g1"))}, allowed: true},
		{name: "EmptyOwnerNeverMatches", caller: authz.Caller{Role: model.RoleGuide}, action: authz.ManageTour, owns: []authz.Ownership{authz.Is("")}},
		{name: "AdminNoOverrideForTours", caller: admin, action: authz.ManageTour},
		{name: "UnknownAction", caller: admin, action: authz.Action("nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(tt.caller, tt.action, tt.owns...)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}

			assert.True(t, apperr.IsKind(err, apperr.KindPermission), "got %v", err)
		})
	}
}

func TestAuthorize_Messages(t *testing.T) {
	err := authz.Authorize(authz.Caller{Role: model.RoleGuide}, authz.CreateBooking)
	assert.EqualError(t, err, "only tourists can create bookings")

	err = authz.Authorize(authz.Caller{UserID: "t1", Role: model.RoleTourist}, authz.SavePayment, authz.Is("t2"))
	assert.EqualError(t, err, "you can only pay for your own bookings")
}
