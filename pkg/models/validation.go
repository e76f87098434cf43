package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var timeOfDay = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsTimeOfDay reports whether s is a 24-hour HH:MM time.
func IsTimeOfDay(s string) bool {
	return timeOfDay.MatchString(s)
}

// RegisterValidators adds the form tags used by the models to v.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return err
	}
	return v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsTimeOfDay(fl.Field().String())
	})
}
