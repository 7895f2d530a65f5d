// Package moneypkg provides common money related functionality for apps.
package moneypkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates that the amount is not a positive number.
var ErrInvalidAmount = errors.New("invalid amount")

// Parse converts s into a positive decimal amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	return d, nil
}

// ValidMoney validates whether the field holds a positive decimal string.
var ValidMoney validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}
