package validate

import (
	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("isbn13digits", isbn13Digits) //nolint:errcheck
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// isbn13Digits accepts exactly 13 ascii digits, no dashes.
func isbn13Digits(fl validator.FieldLevel) bool {
	return Digits(fl.Field().String(), 13)
}

// Digits reports whether s is exactly n ASCII digits.
// Signs, spaces and decimal points are rejected, unlike the numeric tag.
func Digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
