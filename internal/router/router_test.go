package router_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/tour-guide-marketplace/internal/handler"
	"github.com/iliyamo/tour-guide-marketplace/internal/router"
)

func TestRegister_Routes(t *testing.T) {
	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:      &handler.AuthHandler{},
		Users:     &handler.UserHandler{},
		Tours:     &handler.TourHandler{},
		Bookings:  &handler.BookingHandler{},
		Payments:  &handler.PaymentHandler{},
		Health:    handler.Health(nil),
		JWTSecret: "s",
	})

	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /healthz",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"POST /api/users/register",
		"GET /api/users/all-users",
		"GET /api/users/me",
		"PATCH /api/users/:id",
		"GET /api/tours",
		"GET /api/tours/my-tours",
		"GET /api/tours/:id",
		"POST /api/tours/create",
		"PATCH /api/tours/:id",
		"DELETE /api/tours/:id",
		"POST /api/booking",
		"GET /api/booking",
		"GET /api/booking/:id",
		"PATCH /api/booking/:id/status",
		"PATCH /api/booking/:id/complete",
		"GET /api/booking/guide/pending",
		"GET /api/booking/guide/active",
		"GET /api/booking/target/:id",
		"GET /api/booking/need-payment",
		"GET /api/booking/unpaid",
		"GET /api/booking/paid",
		"POST /api/payment/create-payment-intent",
		"POST /api/payment",
		"GET /api/payment/:bookingId",
	}
	for _, w := range want {
		assert.True(t, got[w], "missing route %s", w)
	}
}

func TestRegister_ProtectedWithoutToken(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(slog.Default())
	router.Register(e, router.Handlers{
		Auth:      &handler.AuthHandler{},
		Users:     &handler.UserHandler{},
		Tours:     &handler.TourHandler{},
		Bookings:  &handler.BookingHandler{},
		Payments:  &handler.PaymentHandler{},
		Health:    handler.Health(nil),
		JWTSecret: "s",
	})

	for _, path := range []string{"/api/booking", "/api/users/me", "/api/payment/b1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	}
}
