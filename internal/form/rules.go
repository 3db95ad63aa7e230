package form

import (
	"fmt"
	"regexp"
	"strings"
)

// Values maps field names to their current values (string or bool).
type Values map[string]any

// Errors maps field names to error messages. Empty string means valid.
type Errors map[string]string

// Touched records which fields the user has interacted with at least once.
type Touched map[string]bool

// Rule is the declarative validation descriptor for one field.
// Rules are evaluated in fixed order, short-circuiting on the first failure:
// required, email, phone, minLength, maxLength, custom.
type Rule struct {
	Required  bool
	Email     bool
	Phone     bool
	MinLength int
	MaxLength int

	// Custom runs after the built-in rules and may inspect the other field
	// values for cross-field checks. A non-empty return is the error.
	Custom func(value any, values Values) string

	RequiredMessage  string
	EmailMessage     string
	PhoneMessage     string
	MinLengthMessage string
	MaxLengthMessage string
}

// RuleSet maps field names to their rules. Immutable per form instance.
type RuleSet map[string]Rule

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// ValidateField checks a single value against the field's rule.
// Fields without a rule are always valid.
func ValidateField(name string, value any, rules RuleSet, values Values) string {
	rule, ok := rules[name]
	if !ok {
		return ""
	}

	s := stringValue(value)
	present := !isEmpty(value)

	if rule.Required && !present {
		if rule.RequiredMessage != "" {
			return rule.RequiredMessage
		}
		return name + " is required"
	}

	if rule.Email && present && !emailRe.MatchString(s) {
		if rule.EmailMessage != "" {
			return rule.EmailMessage
		}
		return "Please enter a valid email address"
	}

	if rule.Phone && present && !phoneRe.MatchString(phoneStripper.Replace(s)) {
		if rule.PhoneMessage != "" {
			return rule.PhoneMessage
		}
		return "Please enter a valid phone number"
	}

	if rule.MinLength > 0 && present && len(s) < rule.MinLength {
		if rule.MinLengthMessage != "" {
			return rule.MinLengthMessage
		}
		return fmt.Sprintf("Must be at least %d characters", rule.MinLength)
	}

	if rule.MaxLength > 0 && present && len(s) > rule.MaxLength {
		if rule.MaxLengthMessage != "" {
			return rule.MaxLengthMessage
		}
		return fmt.Sprintf("Must not exceed %d characters", rule.MaxLength)
	}

	if rule.Custom != nil {
		if msg := rule.Custom(value, values); msg != "" {
			return msg
		}
	}

	return ""
}

// isEmpty reports whether a value counts as absent for the required rule:
// nil, whitespace-only strings, and false booleans.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return strings.TrimSpace(fmt.Sprint(v)) == ""
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
