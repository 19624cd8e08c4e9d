package web

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidDecimal validates whether the field holds a decimal number.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	var s string

	switch v := fl.Field().Interface().(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return false
	}

	_, err := decimal.NewFromString(s)

	return err == nil
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators registers the custom binding tags used by the handlers.
// It is safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected binding validator engine")
			return
		}

		registerErr = v.RegisterValidation("decimal", ValidDecimal)
	})

	return registerErr
}

// GetErrorMsg returns a human readable suffix for the failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " must be greater than or equal to " + fe.Param()
	case "max":
		return " must be less than or equal to " + fe.Param()
	case "decimal":
		return " must be a decimal number"
	}

	return " is invalid"
}

// BindingErrorMsg converts the error returned by gin binding into a message for the client.
func BindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return "invalid request"
}
