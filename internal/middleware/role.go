package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// RequireRole rejects callers whose role is not one of roles.  It must run
// after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return apperr.Unauthorized("you are not authorized")
			}
			if !allowed[caller.Role] {
				return apperr.Permission("you are not permitted to view this route")
			}
			return next(c)
		}
	}
}
