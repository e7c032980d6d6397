// Package accounts handles ledger account names.
package accounts

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultFallback receives entries that no rule and no bank category place.
	DefaultFallback = "Expenses:Uncategorized"
	// DefaultCategoryPrefix is prepended to bank-provided categories.
	DefaultCategoryPrefix = "Expenses"
)

// Type is the top-level classification of an account name.
type Type string

const (
	TypeAssets      Type = "Assets"
	TypeLiabilities Type = "Liabilities"
	TypeEquity      Type = "Equity"
	TypeIncome      Type = "Income"
	TypeExpenses    Type = "Expenses"
	TypeOther       Type = ""
)

var errEmpty = errors.New("account name is empty")

// Validate checks that name can be written as a posting account. Two
// consecutive spaces or a tab would end the account name early in the
// ledger text, so both are rejected.
func Validate(name string) error {
	if name == "" {
		return errEmpty
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("account %q has leading or trailing whitespace", name)
	}
	if strings.Contains(name, "\t") || strings.Contains(name, "  ") {
		return fmt.Errorf("account %q contains a tab or double space", name)
	}
	if strings.ContainsAny(name, "\r\n;") {
		return fmt.Errorf("account %q contains a line break or ';'", name)
	}
	for _, seg := range strings.Split(name, ":") {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("account %q has an empty segment", name)
		}
	}
	return nil
}

// FromCategory derives an account from a bank-provided category, e.g.
// ("Expenses", "Dining Out") -> "Expenses:Dining Out". Whitespace runs
// collapse to one space. An empty category, or one that does not make a
// valid account name, yields fallback.
func FromCategory(prefix, category, fallback string) string {
	cat := strings.Join(strings.Fields(category), " ")
	cat = strings.ReplaceAll(cat, ";", "")
	if cat == "" {
		return fallback
	}
	name := cat
	if prefix != "" {
		name = prefix + ":" + cat
	}
	if Validate(name) != nil {
		return fallback
	}
	return name
}

// TypeOf returns the classification named by the first segment.
func TypeOf(name string) Type {
	root, _, _ := strings.Cut(name, ":")
	switch Type(root) {
	case TypeAssets, TypeLiabilities, TypeEquity, TypeIncome, TypeExpenses:
		return Type(root)
	}
	return TypeOther
}
