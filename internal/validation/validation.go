// Package validation normalises and checks the raw field values every timetable mutation
// receives. All functions are pure; failures are *errors.Error values with the
// VALIDATION_ERROR code and a message naming the field.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// dayAliases maps lower-cased accepted names to canonical weekday names.
var dayAliases = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"lunes":     "Monday",
	"martes":    "Tuesday",
	"miércoles": "Wednesday",
	"miercoles": "Wednesday",
	"jueves":    "Thursday",
	"viernes":   "Friday",
}

func invalid(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(format, args...))
}

// NormalizeText trims surrounding whitespace. An empty result means the value is absent.
func NormalizeText(value string) string {
	return strings.TrimSpace(value)
}

// RequireText returns the trimmed value or fails when it is empty.
func RequireText(value, field string) (string, error) {
	text := NormalizeText(value)
	if text == "" {
		return "", invalid("%s is required", field)
	}
	return text, nil
}

// RequireID parses a strictly positive integer identifier.
func RequireID(value, field string) (int64, error) {
	text := NormalizeText(value)
	if text == "" {
		return 0, invalid("%s is required", field)
	}
	if !isDigits(text) {
		return 0, invalid("%s must be a positive integer", field)
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("%s must be a positive integer", field)
	}
	return id, nil
}

// OptionalID is RequireID for optional fields: empty input yields nil.
func OptionalID(value, field string) (*int64, error) {
	if NormalizeText(value) == "" {
		return nil, nil
	}
	id, err := RequireID(value, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RequireNonNegativeInt parses an integer >= 0.
func RequireNonNegativeInt(value, field string) (int, error) {
	text := NormalizeText(value)
	if text == "" {
		return 0, invalid("%s is required", field)
	}
	n, err := strconv.Atoi(text)
	if err != nil || strings.HasPrefix(text, "+") {
		return 0, invalid("%s must be a number", field)
	}
	if n < 0 {
		return 0, invalid("%s must not be negative", field)
	}
	return n, nil
}

// NormalizeDay matches value case-insensitively against the five school days and returns
// the canonical name.
func NormalizeDay(value string) (string, error) {
	day, ok := dayAliases[strings.ToLower(NormalizeText(value))]
	if !ok {
		return "", invalid("invalid day")
	}
	return day, nil
}

// NormalizeSlot parses a positive slot number. maxSlots <= 0 disables the upper bound.
func NormalizeSlot(value string, maxSlots int) (int, error) {
	text := NormalizeText(value)
	if !isDigits(text) {
		return 0, invalid("slot must be a positive integer")
	}
	slot, err := strconv.Atoi(text)
	if err != nil || slot <= 0 {
		return 0, invalid("slot must be a positive integer")
	}
	if maxSlots > 0 && slot > maxSlots {
		return 0, invalid("slot must be at most %d", maxSlots)
	}
	return slot, nil
}

// OptionalTime validates an HH:MM time of day. Empty input yields nil; a single-digit
// hour is zero-padded so lexical comparison stays valid.
func OptionalTime(value, field string) (*string, error) {
	text := NormalizeText(value)
	if text == "" {
		return nil, nil
	}
	hour, minute, ok := strings.Cut(text, ":")
	if !ok || len(hour) < 1 || len(hour) > 2 || len(minute) != 2 {
		return nil, invalid("%s must use the HH:MM format", field)
	}
	h, errH := strconv.Atoi(hour)
	m, errM := strconv.Atoi(minute)
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 || !isDigits(hour) || !isDigits(minute) {
		return nil, invalid("%s must use the HH:MM format", field)
	}
	normalized := fmt.Sprintf("%02d:%02d", h, m)
	return &normalized, nil
}

// EnsureTimeOrder fails when both times are present and start is not before end.
// Both values are zero-padded HH:MM, so string order equals chronological order.
func EnsureTimeOrder(start, end *string) error {
	if start == nil || end == nil {
		return nil
	}
	if *start >= *end {
		return invalid("start must precede end")
	}
	return nil
}

// isDigits reports whether text is a non-empty run of ASCII digits, without sign.
func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
