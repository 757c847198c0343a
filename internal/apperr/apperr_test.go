package apperr_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
)

func TestError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.Error
		want int
	}{
		{name: "Validation", err: apperr.Validation("bad"), want: http.StatusBadRequest},
		{name: "Unauthorized", err: apperr.Unauthorized("who"), want: http.StatusUnauthorized},
		{name: "Permission", err: apperr.Permission("no"), want: http.StatusForbidden},
		{name: "NotFound", err: apperr.NotFound("gone"), want: http.StatusNotFound},
		{name: "Conflict", err: apperr.Conflict("race"), want: http.StatusConflict},
		{name: "Unknown", err: &apperr.Error{Message: "?"}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestAs_Wrapped(t *testing.T) {
	err := fmt.Errorf("load booking: %w", apperr.NotFound("booking %s not found", "b1"))

	got, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, got.Kind)
	assert.Equal(t, "booking b1 not found", got.Message)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.False(t, apperr.IsKind(err, apperr.KindConflict))

	_, ok = apperr.As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
