// Package importer turns bank CSV exports into ledger entries, one Adapter
// per institution.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledgerize-dev/ledgerize/internal/accounts"
	"github.com/ledgerize-dev/ledgerize/internal/model"
)

// Adapter builds a ledger entry from one raw record of an institution's export.
type Adapter interface {
	// Name is the institution identifier used for lookup.
	Name() string
	// Adapt builds an unrecognized entry whose primary posting pairs account
	// with the record's signed amount.
	Adapt(rec Record, account string) (*model.Entry, error)
	// Fallback is the category account for a record no rule recognized.
	Fallback(rec Record) string
}

// Record is one CSV row keyed by header name.
type Record struct {
	Row    int // 1-based file row; the header is row 1
	Fields map[string]string
	Extra  int // cells beyond the header width
}

var errMissingField = errors.New("missing field")

// Field returns the named value, or a MalformedRowError when the export has
// no such column.
func (r Record) Field(name string) (string, error) {
	v, ok := r.Fields[name]
	if !ok {
		return "", &model.MalformedRowError{Row: r.Row, Field: name, Err: errMissingField}
	}
	return v, nil
}

// Check reports a record wider than the header.
func (r Record) Check() error {
	if r.Extra > 0 {
		return &model.MalformedRowError{Row: r.Row, Err: fmt.Errorf("%d more fields than the header", r.Extra)}
	}
	return nil
}

// Lookup returns the named value and whether the column exists.
func (r Record) Lookup(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

const utf8BOM = "\ufeff"

// ReadRecords reads a CSV export whose first row is the header.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	// Row width is checked per record so a bad row is a MalformedRowError.
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, errors.New("reading CSV: missing header row")
	}

	header := records[0]
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if seen[h] {
			return nil, fmt.Errorf("reading CSV: duplicate column %q", h)
		}
		seen[h] = true
		header[i] = h
	}

	var out []Record
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[h] = rec[j]
			}
		}
		out = append(out, Record{Row: i + 2, Fields: fields, Extra: max(len(rec)-len(header), 0)})
	}
	return out, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Registry holds adapters by lower-cased institution name.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Panics on duplicate name.
func (r *Registry) Register(a Adapter) {
	key := strings.ToLower(a.Name())
	if _, ok := r.adapters[key]; ok {
		panic("duplicate institution: " + key)
	}
	r.adapters[key] = a
}

// Get returns the adapter for institution, or nil.
func (r *Registry) Get(institution string) Adapter {
	return r.adapters[strings.ToLower(institution)]
}

// Names returns the registered institutions, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Options carries the fallback policy shared by the built-in adapters.
type Options struct {
	FallbackAccount string
	CategoryPrefix  string
}

// DefaultRegistry returns a registry with all built-in institutions. Empty
// options fall back to the accounts package defaults.
func DefaultRegistry(opts Options) *Registry {
	if opts.FallbackAccount == "" {
		opts.FallbackAccount = accounts.DefaultFallback
	}
	if opts.CategoryPrefix == "" {
		opts.CategoryPrefix = accounts.DefaultCategoryPrefix
	}

	r := NewRegistry()
	r.Register(CatBank(opts))
	r.Register(Chase(opts))
	r.Register(CreditUnion(opts))
	return r
}
