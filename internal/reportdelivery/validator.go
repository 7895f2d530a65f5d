package reportdelivery

import (
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidStatus validates whether the transaction status name is known.
var ValidStatus validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := domain.ParseStatus(s)
		return err == nil
	}

	return false
}
