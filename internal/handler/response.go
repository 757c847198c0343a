package handler // package handler exposes the HTTP endpoints of the marketplace

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

// envelope is the body of every successful response.
type envelope struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Data       any               `json:"data"`
	Meta       *service.PageMeta `json:"meta,omitempty"`
}

// errorBody is the body of every failed response.
type errorBody struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      any    `json:"error"`
}

func respond(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, envelope{Success: true, StatusCode: status, Message: msg, Data: data})
}

func respondPage[T any](c echo.Context, msg string, p service.Page[T]) error {
	data := p.Data
	if data == nil {
		data = []T{}
	}
	return c.JSON(http.StatusOK, envelope{Success: true, StatusCode: http.StatusOK, Message: msg, Data: data, Meta: &p.Meta})
}

// ErrorHandler renders every error returned by a handler or middleware in
// the error envelope.  Domain errors keep their message; anything else is
// logged and reported as an internal error.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := http.StatusInternalServerError, "internal server error"
		var detail any = msg
		var he *echo.HTTPError
		if ae, ok := apperr.As(err); ok {
			status, msg, detail = ae.Status(), ae.Message, ae.Message
		} else if errors.As(err, &he) {
			status = he.Code
			msg = http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok {
				msg = m
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
			detail = msg
		} else {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"err", err,
			)
		}

		body := errorBody{StatusCode: status, Message: msg, Error: detail}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error("write error response", "err", werr)
		}
	}
}
