package model

import "strings"

// Rule maps a description substring to a canonical description and account.
type Rule struct {
	Pattern     string // case-sensitive substring, not a regular expression
	Description string
	Account     string
}

// Matches reports whether the rule's pattern occurs in description.
func (r Rule) Matches(description string) bool {
	return strings.Contains(description, r.Pattern)
}
