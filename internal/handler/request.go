package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/middleware"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

// requestTimeout bounds every service call made by a handler.
const requestTimeout = 5 * time.Second

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate reports the first failing field as a validation error.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validation("%s is required", fe.Field())
		case "email":
			return apperr.Validation("%s must be a valid email", fe.Field())
		case "oneof":
			return apperr.Validation("%s must be one of [%s]", fe.Field(), fe.Param())
		case "min":
			return apperr.Validation("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return apperr.Validation("%s is invalid", fe.Field())
	}
	return apperr.Validation("%s", err.Error())
}

// bind decodes the request into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return c.Validate(dst)
}

// bindForm handles the multipart shape used by uploads: a JSON document in
// the "data" field and an optional "file".  Plain JSON bodies are accepted
// too.  The returned close func releases the uploaded file.
func bindForm(c echo.Context, dst any) (*service.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, bind(c, dst)
	}

	if data := c.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), dst); err != nil {
			return nil, noop, apperr.Validation("data must be a JSON document")
		}
	}
	if err := c.Validate(dst); err != nil {
		return nil, noop, err
	}

	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperr.Validation("invalid file upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.Upload{Filename: fh.Filename, Body: f}, closer(f), nil
}

func closer(f multipart.File) func() { return func() { _ = f.Close() } }

// scope returns the request context bounded by requestTimeout and the
// authenticated caller.
func scope(c echo.Context) (context.Context, context.CancelFunc, authz.Caller) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	caller, _ := middleware.CallerFrom(c)
	return ctx, cancel, caller
}

func pageRequest(c echo.Context) service.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return service.PageRequest{Page: page, Limit: limit}
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation("tourDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	return t, nil
}
