package middleware // package middleware holds the Echo middleware shared by all routes

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/utils"
)

// AccessCookie is the cookie the login handler stores the access token in.
const AccessCookie = "accessToken"

const callerKey = "caller"

// JWTAuth validates the access token and stores the authenticated
// authz.Caller in the context.  The token is read from the accessToken
// cookie first, then from the Authorization header with or without the
// "Bearer " prefix.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c)
			if raw == "" {
				return apperr.Unauthorized("you are not authorized")
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return apperr.Unauthorized("invalid or expired token")
			}
			role := model.Role(claims.Role)
			if !role.Valid() {
				return apperr.Unauthorized("invalid token role")
			}
			c.Set(callerKey, authz.Caller{UserID: claims.Subject, Role: role, Email: claims.Email})
			return next(c)
		}
	}
}

func tokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// CallerFrom returns the caller stored by JWTAuth.
func CallerFrom(c echo.Context) (authz.Caller, bool) {
	v, ok := c.Get(callerKey).(authz.Caller)
	return v, ok
}

// callerID returns the authenticated user id or "anon".
func callerID(c echo.Context) string {
	if v, ok := CallerFrom(c); ok && v.UserID != "" {
		return v.UserID
	}
	return "anon"
}

// OptionalJWT attaches the caller when a valid token is present and lets
// anonymous requests through.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := tokenFrom(c); raw != "" {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil && model.Role(claims.Role).Valid() {
					c.Set(callerKey, authz.Caller{UserID: claims.Subject, Role: model.Role(claims.Role), Email: claims.Email})
				}
			}
			return next(c)
		}
	}
}
