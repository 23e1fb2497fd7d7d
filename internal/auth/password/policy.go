package password

import (
	"fmt"
	"strings"
	"unicode"
)

// Rule identifies a single policy requirement.
type Rule string

const (
	RuleMinLength       Rule = "min_length"
	RuleDigit           Rule = "digit"
	RuleLowercase       Rule = "lowercase"
	RuleUppercase       Rule = "uppercase"
	RuleNonAlphanumeric Rule = "non_alphanumeric"
)

// Violation is one unmet rule, with a message suitable for field-level
// guidance in API responses.
type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// Policy enforces password strength at local account creation.
// Provider-linked accounts carry no password and are never checked.
type Policy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

/// DefaultPolicy mirrors the account-creation defaults: 12 characters and
// all four character classes.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:              12,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Check returns every unmet rule, not just the first, so callers can
// render complete guidance. An empty slice means the password passes.
func (p Policy) Check(pw string) []Violation {
	var violations []Violation

	if len(pw) < p.MinLength {
		violations = append(violations, Violation{
			Rule:    RuleMinLength,
			Message: fmt.Sprintf("password must be at least %d characters", p.MinLength),
		})
	}

	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasOther = true
		}
	}

	if p.RequireDigit && !hasDigit {
		violations = append(violations, Violation{RuleDigit, "password must contain a digit"})
	}
	if p.RequireLowercase && !hasLower {
		violations = append(violations, Violation{RuleLowercase, "password must contain a lowercase letter"})
	}
	if p.RequireUppercase && !hasUpper {
		violations = append(violations, Violation{RuleUppercase, "password must contain an uppercase letter"})
	}
	if p.RequireNonAlphanumeric && !hasOther {
		violations = append(violations, Violation{RuleNonAlphanumeric, "password must contain a non-alphanumeric character"})
	}

	return violations
}

// PolicyError carries the full violation list across the service
// boundary; handlers map it to a 400 with per-rule detail.
type PolicyError struct {
	Violations []Violation
}

func (e *PolicyError) Error() string {
	rules := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		rules[i] = string(v.Rule)
	}
	return "password policy violated: " + strings.Join(rules, ", ")
}
