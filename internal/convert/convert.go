// Package convert runs one export file through adapter, recognition and
// rendering to produce ledger text.
package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ledgerize-dev/ledgerize/internal/importer"
	"github.com/ledgerize-dev/ledgerize/internal/journal"
	"github.com/ledgerize-dev/ledgerize/internal/model"
	"github.com/ledgerize-dev/ledgerize/internal/recognize"
	"github.com/ledgerize-dev/ledgerize/internal/rules"
)

// Converter holds what one run shares across files: the adapters and the
// rule cache, which loads the rules file once.
type Converter struct {
	Adapters *importer.Registry
	Rules    *rules.Cache
	Logger   zerolog.Logger

	// SkipMalformed logs and drops malformed rows instead of failing the run.
	SkipMalformed bool
}

// New creates a Converter with logging disabled.
func New(adapters *importer.Registry, cache *rules.Cache) *Converter {
	return &Converter{Adapters: adapters, Rules: cache, Logger: zerolog.Nop()}
}

// Result is the rendered ledger text of one conversion and its statistics.
type Result struct {
	Text  string
	Stats Stats
}

// Convert reads an export from r and renders every row in source order.
// account is the primary account the statement belongs to.
func (c *Converter) Convert(institution, account string, r io.Reader) (Result, error) {
	adapter := c.Adapters.Get(institution)
	if adapter == nil {
		return Result{}, fmt.Errorf("unknown institution %q", institution)
	}

	ruleSet, err := c.Rules.Rules()
	if err != nil {
		return Result{}, fmt.Errorf("loading rules: %w", err)
	}

	records, err := importer.ReadRecords(r)
	if err != nil {
		return Result{}, err
	}

	log := c.Logger.With().Str("institution", adapter.Name()).Str("account", account).Logger()
	stats := newStats()
	var b strings.Builder

	for _, rec := range records {
		stats.Rows++

		entry, err := adapter.Adapt(rec, account)
		if err != nil {
			var unknown *model.UnknownTransactionTypeError
			var malformed *model.MalformedRowError
			switch {
			case errors.As(err, &unknown):
				log.Warn().Int("row", unknown.Row).Str("value", unknown.Value).Msg("Unknown transaction type, flagged in output")
				b.WriteString(journal.RenderUnknown(unknown.Row, unknown.Value))
				stats.Flagged++
				continue
			case errors.As(err, &malformed) && c.SkipMalformed:
				log.Warn().Err(err).Int("row", malformed.Row).Msg("Skipping malformed row")
				stats.Skipped++
				continue
			}
			return Result{}, err
		}

		if recognize.Recognize(entry, ruleSet) {
			stats.Recognized++
			log.Debug().Int("row", rec.Row).Str("description", entry.Description).Msg("Recognized")
		} else {
			fallback := adapter.Fallback(rec)
			if err := entry.AddPosting(model.BarePosting{Account: fallback}); err != nil {
				return Result{}, fmt.Errorf("row %d: %w", rec.Row, err)
			}
			stats.Fallback++
			log.Debug().Int("row", rec.Row).Str("fallback", fallback).Msg("No rule matched")
		}

		stats.add(entry)
		b.WriteString(journal.Render(entry))
	}

	log.Info().
		Int("rows", stats.Rows).
		Int("recognized", stats.Recognized).
		Int("fallback", stats.Fallback).
		Int("flagged", stats.Flagged).
		Int("skipped", stats.Skipped).
		Msg("Converted export")

	return Result{Text: b.String(), Stats: stats}, nil
}

// ConvertFile converts inPath and writes the ledger text to outPath. Nothing
// is written unless every row converts.
func (c *Converter) ConvertFile(institution, account, inPath, outPath string, appendMode bool) (Result, error) {
	f, err := os.Open(inPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{}, &model.MissingFileError{Path: inPath, Err: err}
	}
	if err != nil {
		return Result{}, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	res, err := c.Convert(institution, account, f)
	if err != nil {
		return Result{}, fmt.Errorf("converting %s: %w", inPath, err)
	}

	if err := journal.WriteFile(outPath, []byte(res.Text), appendMode); err != nil {
		return Result{}, err
	}
	c.Logger.Debug().Str("path", outPath).Bool("append", appendMode).Msg("Wrote ledger")
	return res, nil
}
