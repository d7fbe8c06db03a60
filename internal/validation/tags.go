package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// Raw is an unparsed form value. It decodes from a JSON string, number or null so API
// clients can send either `"slot": 3` or `"slot": "3"`.
type Raw string

// UnmarshalJSON implements json.Unmarshaler.
func (r *Raw) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Raw(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a scalar value")
	default:
		*r = Raw(data)
	}
	return nil
}

// String returns the raw text.
func (r Raw) String() string { return string(r) }

const (
	tagWeekday = "weekday"
	tagHHMM    = "hhmm"
	tagID      = "posid"
)

var tagMessages = map[string]string{
	"required": "%s is required",
	"max":      "%s is too long",
	"min":      "%s must not be negative",
	tagWeekday: "invalid day",
	tagHHMM:    "%s must use the HH:MM format",
	tagID:      "%s must be a positive integer",
}

// RegisterValidators installs the timetable tags on validate and reports fields by their
// JSON names.
func RegisterValidators(validate *validator.Validate) {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(tagWeekday, func(fl validator.FieldLevel) bool {
		_, err := NormalizeDay(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation(tagHHMM, func(fl validator.FieldLevel) bool {
		_, err := OptionalTime(fl.Field().String(), fl.FieldName())
		return err == nil
	})
	_ = validate.RegisterValidation(tagID, func(fl validator.FieldLevel) bool {
		_, err := RequireID(fl.Field().String(), fl.FieldName())
		return err == nil
	})
}

// New returns a validator with the timetable tags registered.
func New() *validator.Validate {
	validate := validator.New()
	RegisterValidators(validate)
	return validate
}

// Struct validates payload and converts the first failing field into a VALIDATION_ERROR.
func Struct(validate *validator.Validate, payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fe := fieldErrs[0]
	format, ok := tagMessages[fe.Tag()]
	if !ok {
		format = "%s is invalid"
	}
	message := format
	if strings.Contains(format, "%s") {
		message = fmt.Sprintf(format, fe.Field())
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
