// Package validation checks raw request fields against declarative rule tables.
//
// Every rule in a table is evaluated, so a single call reports all violations
// at once rather than stopping at the first one.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Fields holds decoded request body values keyed by field name.
type Fields map[string]any

// Lookup returns the field as a string when it is one.
func (f Fields) Lookup(name string) (string, bool) {
	s, ok := f[name].(string)
	return s, ok
}

// FieldError reports one violated rule.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`

	// Present is set when the field was sent, so an explicit null still
	// serializes as "value": null.
	Present bool `json:"-"`
}

func (fe FieldError) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type     string `json:"type"`
		Value    *any   `json:"value,omitempty"`
		Msg      string `json:"msg"`
		Path     string `json:"path"`
		Location string `json:"location"`
	}
	w := wire{Type: fe.Type, Msg: fe.Msg, Path: fe.Path, Location: fe.Location}
	if fe.Present {
		v := fe.Value
		w.Value = &v
	}
	return json.Marshal(w)
}

// Errors is the accumulated result of a failed validation.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Path + ": " + fe.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields lists the distinct field names that failed, in first-seen order.
func (e Errors) Fields() []string {
	seen := make(map[string]struct{}, len(e))
	var out []string
	for _, fe := range e {
		if _, ok := seen[fe.Path]; ok {
			continue
		}
		seen[fe.Path] = struct{}{}
		out = append(out, fe.Path)
	}
	return out
}

// Check reports whether a value satisfies a rule. raw is the decoded JSON value
// (nil when absent), str its string form.
type Check func(raw any, str string) bool

// Rule binds a check and its message to a field.
type Rule struct {
	Field   string
	Check   Check
	Message string
}

// Validate evaluates every rule against fields and returns nil when all pass.
func Validate(fields Fields, rules []Rule) error {
	var errs Errors
	for _, rule := range rules {
		raw, present := fields[rule.Field]
		if rule.Check(raw, toString(raw)) {
			continue
		}
		fe := FieldError{
			Type:     "field",
			Msg:      rule.Message,
			Path:     rule.Field,
			Location: "body",
		}
		if present {
			fe.Value = raw
			fe.Present = true
		}
		errs = append(errs, fe)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// toString mirrors how request values are coerced before string checks.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

var validate = validator.New()

// NotEmpty fails on missing, null and empty-string values.
func NotEmpty(_ any, s string) bool { return s != "" }

// IsString fails unless the raw value is a JSON string.
func IsString(raw any, _ string) bool {
	_, ok := raw.(string)
	return ok
}

// Matches builds a check against a compiled pattern.
func Matches(re *regexp.Regexp) Check {
	return func(_ any, s string) bool { return re.MatchString(s) }
}

// MaxLen limits the character count.
func MaxLen(n int) Check {
	return func(_ any, s string) bool { return utf8.RuneCountInString(s) <= n }
}

// MinLen requires at least n characters.
func MinLen(n int) Check {
	return func(_ any, s string) bool { return utf8.RuneCountInString(s) >= n }
}

// IsEmail checks address syntax.
func IsEmail(_ any, s string) bool {
	return validate.Var(s, "required,email") == nil
}

// PasswordSpecials is the set of characters that satisfy the special-character requirement.
const PasswordSpecials = `!@#$%^&*()_+{}[]:;<>,.?~\/-`

// StrongPassword requires a lowercase letter, an uppercase letter and a special character.
func StrongPassword(_ any, s string) bool {
	var lower, upper, special bool
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029':
			// single-line values only
			return false
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r < unicode.MaxASCII && strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	return lower && upper && special
}
