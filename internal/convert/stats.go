package convert

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerize-dev/ledgerize/internal/model"
	"github.com/ledgerize-dev/ledgerize/internal/normalize"
)

// Stats counts what happened to the rows of one conversion.
type Stats struct {
	Rows       int
	Recognized int
	Fallback   int
	Flagged    int // unknown transaction type
	Skipped    int // malformed, with SkipMalformed

	// Totals sums the implied balancing amount per category account: the
	// primary amount negated. Amounts that are not plain decimals are left out.
	Totals map[string]decimal.Decimal
}

func newStats() Stats {
	return Stats{Totals: make(map[string]decimal.Decimal)}
}

// Entries is the number of entries rendered.
func (s Stats) Entries() int {
	return s.Recognized + s.Fallback
}

// Accounts returns the category accounts in Totals, sorted.
func (s Stats) Accounts() []string {
	names := make([]string, 0, len(s.Totals))
	for k := range s.Totals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Merge adds o's counts and totals into s.
func (s *Stats) Merge(o Stats) {
	s.Rows += o.Rows
	s.Recognized += o.Recognized
	s.Fallback += o.Fallback
	s.Flagged += o.Flagged
	s.Skipped += o.Skipped
	if s.Totals == nil {
		s.Totals = make(map[string]decimal.Decimal)
	}
	for k, v := range o.Totals {
		s.Totals[k] = s.Totals[k].Add(v)
	}
}

func (s *Stats) add(e *model.Entry) {
	primary, ok := e.Primary()
	if !ok {
		return
	}
	amt, err := normalize.Decimal(primary.Amount)
	if err != nil {
		return
	}
	balance := amt.Neg()
	for _, p := range e.Postings() {
		if bare, ok := p.(model.BarePosting); ok {
			s.Totals[bare.Account] = s.Totals[bare.Account].Add(balance)
		}
	}
}
