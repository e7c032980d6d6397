package rules

import "github.com/ledgerize-dev/ledgerize/internal/model"

// Cache loads a Store at most once. One Cache is built per run and shared
// by every conversion in it, so edits to the rules file mid-run are not seen.
type Cache struct {
	store  Store
	rules  []model.Rule
	err    error
	loaded bool
}

// NewCache wraps store.
func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Rules returns the rule set, loading it on first use. A load error is
// remembered and returned on every later call.
func (c *Cache) Rules() ([]model.Rule, error) {
	if !c.loaded {
		c.rules, c.err = c.store.Load()
		c.loaded = true
	}
	return c.rules, c.err
}

// DefaultRules seeds a new rules file.
func DefaultRules() []model.Rule {
	return []model.Rule{
		{Pattern: "UWM RESTAU MILWAUKEE", Description: "UWM Restaurant Ops", Account: "Expenses:Food:DiningOut"},
		{Pattern: "EAST GARDE", Description: "East Garden", Account: "Expenses:Food:DiningOut"},
	}
}
