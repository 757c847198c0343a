package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/handler"
	"github.com/iliyamo/tour-guide-marketplace/internal/middleware"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// Handlers bundles everything the routes need.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Tours    *handler.TourHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Health   echo.HandlerFunc

	JWTSecret string
	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc
}

// Register mounts all routes on e.  Every /api route passes through the
// optional token check and the rate limiter; protected groups add JWTAuth
// and a role gate.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health)

	limit := h.RateLimit
	if limit == nil {
		limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	api := e.Group("/api", middleware.OptionalJWT(h.JWTSecret), limit)
	auth := middleware.JWTAuth(h.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleGuide, model.RoleTourist)
	guide := middleware.RequireRole(model.RoleGuide)
	tourist := middleware.RequireRole(model.RoleTourist)

	a := api.Group("/auth")
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	u := api.Group("/users")
	u.POST("/register", h.Users.Register)
	u.GET("/all-users", h.Users.List, auth, middleware.RequireRole(model.RoleAdmin))
	u.GET("/me", h.Users.Me, auth, anyRole)
	u.PATCH("/:id", h.Users.Update, auth, anyRole)

	t := api.Group("/tours")
	t.GET("", h.Tours.List, h.Cache.Middleware())
	t.GET("/my-tours", h.Tours.Mine, auth, guide)
	t.GET("/:id", h.Tours.Get, h.Cache.Middleware())
	t.POST("/create", h.Tours.Create, auth, guide, h.Cache.PurgeOnWrite())
	t.PATCH("/:id", h.Tours.Update, auth, guide, h.Cache.PurgeOnWrite())
	t.DELETE("/:id", h.Tours.Delete, auth, guide, h.Cache.PurgeOnWrite())

	b := api.Group("/booking", auth)
	b.POST("", h.Bookings.Create, tourist)
	b.GET("", h.Bookings.List, anyRole)
	b.GET("/guide/pending", h.Bookings.GuidePending, guide)
	b.GET("/guide/active", h.Bookings.GuideActive, guide)
	b.GET("/target/:id", h.Bookings.ByTarget, tourist)
	b.GET("/need-payment", h.Bookings.NeedPayment, tourist)
	b.GET("/unpaid", h.Bookings.Unpaid, anyRole)
	b.GET("/paid", h.Bookings.Paid, anyRole)
	b.GET("/:id", h.Bookings.Get, anyRole)
	b.PATCH("/:id/status", h.Bookings.UpdateStatus, middleware.RequireRole(model.RoleGuide, model.RoleTourist))
	b.PATCH("/:id/complete", h.Bookings.Complete, guide)

	p := api.Group("/payment", auth)
	p.POST("/create-payment-intent", h.Payments.CreateIntent, tourist)
	p.POST("", h.Payments.Save, tourist)
	p.GET("/:bookingId", h.Payments.GetByBooking, anyRole)
}
