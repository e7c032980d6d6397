// Package recognize categorizes ledger entries against an ordered rule set.
package recognize

import "github.com/ledgerize-dev/ledgerize/internal/model"

// Match returns the first rule whose pattern occurs in description, and its
// index in rules.
func Match(description string, rules []model.Rule) (model.Rule, int, bool) {
	for i, r := range rules {
		if r.Matches(description) {
			return r, i, true
		}
	}
	return model.Rule{}, -1, false
}

// Recognize applies the first matching rule to e and reports whether this
// call recognized it. An already recognized entry is left untouched. When
// nothing matches, e is unchanged and placing it in a fallback account is
// up to the caller.
func Recognize(e *model.Entry, rules []model.Rule) bool {
	if e.Recognized() {
		return false
	}
	r, _, ok := Match(e.Description, rules)
	if !ok {
		return false
	}
	return e.Apply(r)
}
