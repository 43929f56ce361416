// Package form validates and sanitizes submitted form fields.
//
// A Schema lists the fields of one form together with the ozzo-validation
// rules that apply to each. Apply evaluates every rule and returns the
// failures alongside the cleaned values; it never returns an error, callers
// decide what a non-empty failure set means.
package form

import (
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind selects how a field is sanitized.
type Kind int

const (
	// KindText is trimmed and escaped.
	KindText Kind = iota
	// KindList holds every submitted value; each is trimmed and escaped, blanks dropped.
	KindList
	// KindDate is parsed into a date; unparseable or blank input leaves it unset.
	KindDate
)

// Field describes one form field and the rules evaluated against it.
type Field struct {
	Name     string
	Kind     Kind
	Rules    []validation.Rule
	optional bool
}

// Text declares a text field.
func Text(name string, rules ...validation.Rule) Field {
	return Field{Name: name, Kind: KindText, Rules: rules}
}

// List declares a multi-valued field.
func List(name string, rules ...validation.Rule) Field {
	return Field{Name: name, Kind: KindList, Rules: rules}
}

// Date declares a date field.
func Date(name string, rules ...validation.Rule) Field {
	return Field{Name: name, Kind: KindDate, Rules: rules}
}

// Optional skips every rule of the field when the submitted value is blank.
func (f Field) Optional() Field {
	f.optional = true
	return f
}

// Schema is the ordered field list of one form.
type Schema []Field

// Failure is one rule that did not hold.
type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result carries the failures and the sanitized values of one submission.
type Result struct {
	Failures []Failure

	text  map[string]string
	lists map[string][]string
	dates map[string]time.Time
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return len(r.Failures) == 0
}

// Text returns the sanitized value of a text field.
func (r Result) Text(name string) string {
	return r.text[name]
}

// List returns the sanitized values of a multi-valued field, never nil.
func (r Result) List(name string) []string {
	if v, ok := r.lists[name]; ok {
		return v
	}
	return []string{}
}

// Date returns the parsed date, or the zero time when absent.
func (r Result) Date(name string) time.Time {
	return r.dates[name]
}

// Apply evaluates s against the submitted values.
func (s Schema) Apply(in url.Values) Result {
	res := Result{
		text:  make(map[string]string),
		lists: make(map[string][]string),
		dates: make(map[string]time.Time),
	}

	for _, f := range s {
		switch f.Kind {
		case KindList:
			items := make([]string, 0, len(in[f.Name]))
			for _, raw := range in[f.Name] {
				if v := strings.TrimSpace(raw); v != "" {
					items = append(items, v)
				}
			}
			res.Failures = append(res.Failures, check(f, items, len(items) == 0)...)
			for i := range items {
				items[i] = Escape(items[i])
			}
			res.lists[f.Name] = items

		case KindDate:
			v := strings.TrimSpace(in.Get(f.Name))
			res.Failures = append(res.Failures, check(f, v, v == "")...)
			if t, ok := ParseDate(v); ok {
				res.dates[f.Name] = t
			}

		default:
			v := strings.TrimSpace(in.Get(f.Name))
			res.Failures = append(res.Failures, check(f, v, v == "")...)
			res.text[f.Name] = Escape(v)
		}
	}
	return res
}

// check evaluates every rule of f and reports each failing one.
func check(f Field, value any, blank bool) []Failure {
	if f.optional && blank {
		return nil
	}
	var out []Failure
	for _, rule := range f.Rules {
		if err := validation.Validate(value, rule); err != nil {
			out = append(out, Failure{Field: f.Name, Message: err.Error()})
		}
	}
	return out
}
