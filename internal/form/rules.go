package form

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Required fails on a blank value.
func Required(message string) validation.Rule {
	return validation.Required.Error(message)
}

// Alphanumeric fails unless the value holds only ASCII letters and digits.
func Alphanumeric(message string) validation.Rule {
	return is.Alphanumeric.Error(message)
}

// MaxLength fails when the value is longer than n characters.
func MaxLength(n int, message string) validation.Rule {
	return validation.RuneLength(0, n).Error(message)
}

// OneOf fails unless the value is one of values.
func OneOf(message string, values ...string) validation.Rule {
	allowed := make([]any, len(values))
	for i, v := range values {
		allowed[i] = v
	}
	return validation.In(allowed...).Error(message)
}

var errISO8601 = validation.NewError("validation_is_iso8601", "must be an ISO 8601 date")

// ISO8601 fails unless the value is an ISO 8601 date or date-time.
func ISO8601(message string) validation.Rule {
	return validation.NewStringRuleWithError(func(s string) bool {
		_, ok := ParseDate(s)
		return ok
	}, errISO8601).Error(message)
}

// Reduced-precision forms resolve to the first day of the period.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01",
	"2006",
	"20060102",
}

// ParseDate parses s as an ISO 8601 date and truncates it to a UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces markup-significant characters with HTML entities.
func Escape(s string) string {
	return escaper.Replace(s)
}
