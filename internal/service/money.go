package service

import (
	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// checkMoney rejects values the DECIMAL columns would truncate or overflow.
// Callers check the sign first so their zero messages stay specific.
func checkMoney(field string, m, max model.Money) error {
	if !model.HasCents(m) {
		return apperr.Validation("%s must have at most 2 decimal places", field)
	}
	if m.GreaterThan(max) {
		return apperr.Validation("%s must not exceed %s", field, max.StringFixed(2))
	}
	return nil
}
