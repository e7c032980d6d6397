package convert

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerize-dev/ledgerize/internal/importer"
	"github.com/ledgerize-dev/ledgerize/internal/model"
	"github.com/ledgerize-dev/ledgerize/internal/rules"
)

type staticStore struct {
	rules []model.Rule
	loads int
}

func (s *staticStore) Load() ([]model.Rule, error) {
	s.loads++
	return s.rules, nil
}

func (s *staticStore) Save([]model.Rule) error { return nil }

func newConverter(rs ...model.Rule) (*Converter, *staticStore) {
	store := &staticStore{rules: rs}
	return New(importer.DefaultRegistry(importer.Options{}), rules.NewCache(store)), store
}

func TestConvert_EndToEndFallback(t *testing.T) {
	c, _ := newConverter()
	input := "Posted Date,Description,Amount,Category\n3/1/2021,UWM RESTAU MILWAUKEE,(5.00),Dining Out\n"

	res, err := c.Convert("creditunion", "Assets:Checking", strings.NewReader(input))
	require.NoError(t, err)

	want := "2021/03/01 UWM RESTAU MILWAUKEE\n" +
		"    Assets:Checking  -5.00\n" +
		"    Expenses:Dining Out\n" +
		"\n"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, 1, res.Stats.Fallback)
	assert.Equal(t, 0, res.Stats.Recognized)
	assert.Equal(t, 1, res.Stats.Entries())
}

func TestConvert_Recognized(t *testing.T) {
	c, _ := newConverter(rules.DefaultRules()...)
	input := "Posted Date,Description,Amount,Category\n3/1/2021,UWM RESTAU MILWAUKEE,(5.00),Dining Out\n"

	res, err := c.Convert("creditunion", "Assets:Checking", strings.NewReader(input))
	require.NoError(t, err)

	want := "\n" +
		"2021/03/01 * UWM Restaurant Ops\n" +
		"    ; UWM RESTAU MILWAUKEE\n" +
		"    Assets:Checking  -5.00\n" +
		"    Expenses:Food:DiningOut\n" +
		"\n"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, 1, res.Stats.Recognized)
	assert.True(t, decimal.RequireFromString("5").Equal(res.Stats.Totals["Expenses:Food:DiningOut"]), "expense totals are positive")
}

func TestConvert_SourceOrderAndTotals(t *testing.T) {
	c, _ := newConverter(rules.DefaultRules()...)
	data, err := os.ReadFile("../../testdata/creditunion.csv")
	require.NoError(t, err)

	res, err := c.Convert("creditunion", "Assets:Checking", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Stats.Rows)
	assert.Equal(t, 2, res.Stats.Recognized)
	assert.Equal(t, 2, res.Stats.Fallback)

	iUWM := strings.Index(res.Text, "UWM Restaurant Ops")
	iEast := strings.Index(res.Text, "East Garden")
	iDep := strings.Index(res.Text, "DIRECT DEP UNIVERSITY")
	iKwik := strings.Index(res.Text, "KWIK TRIP 411")
	assert.True(t, iUWM < iEast && iEast < iDep && iDep < iKwik, "entries must keep source order")

	assert.Contains(t, res.Text, "    Expenses:Paycheck\n")
	assert.Contains(t, res.Text, "    Expenses:Uncategorized\n")
	assert.Equal(t, []string{"Expenses:Food:DiningOut", "Expenses:Paycheck", "Expenses:Uncategorized"}, res.Stats.Accounts())
	assert.True(t, decimal.RequireFromString("26.40").Equal(res.Stats.Totals["Expenses:Food:DiningOut"]))
	assert.True(t, decimal.RequireFromString("-1500").Equal(res.Stats.Totals["Expenses:Paycheck"]), "deposits balance negatively")
}

func TestConvert_UnknownTypeFlagged(t *testing.T) {
	c, _ := newConverter(rules.DefaultRules()...)
	data, err := os.ReadFile("../../testdata/catbank_export.csv")
	require.NoError(t, err)

	res, err := c.Convert("catbank", "Assets:Checking", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.Flagged)
	assert.Equal(t, 4, res.Stats.Entries())
	assert.Contains(t, res.Text, "; ??? unknown transaction type \"CHECK\" (row 5)\n")
	// Rows after the flagged one are still rendered.
	assert.Contains(t, res.Text, "2021/03/05 SHELL OIL 5543\n    Assets:Checking  -32.10\n    Expenses:Uncategorized\n")
}

func TestConvert_MalformedFailsFast(t *testing.T) {
	c, _ := newConverter()
	input := "Posting Date,Description,Amount\n01/03/2025,A,-1.00\n2025-01-04,B,-2.00\n"

	_, err := c.Convert("chase", "Assets:Checking", strings.NewReader(input))
	var malformed *model.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 3, malformed.Row)
	assert.Equal(t, "Posting Date", malformed.Field)
}

func TestConvert_SkipMalformed(t *testing.T) {
	c, _ := newConverter()
	c.SkipMalformed = true
	input := "Posting Date,Description,Amount\n01/03/2025,A,-1.00\n2025-01-04,B,-2.00\n01/05/2025,C,(3.00)\n"

	res, err := c.Convert("chase", "Assets:Checking", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, 2, res.Stats.Entries())
	assert.NotContains(t, res.Text, " B\n")
}

func TestConvert_SkipMalformedShortRow(t *testing.T) {
	c, _ := newConverter()
	c.SkipMalformed = true
	input := "Posted Date,Description,Amount,Category\n3/1/2021,A,(1.00),Food\n3/2/2021,B\n3/3/2021,C,2.00,Food,extra\n3/4/2021,D,(3.00),\n"

	res, err := c.Convert("creditunion", "Assets:Checking", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Skipped)
	assert.Equal(t, 2, res.Stats.Entries())
	assert.Contains(t, res.Text, "2021/03/01 A\n")
	assert.Contains(t, res.Text, "2021/03/04 D\n")
}

func TestConvert_ShortRowFailsFast(t *testing.T) {
	c, _ := newConverter()
	input := "Posted Date,Description,Amount,Category\n3/1/2021,A,(1.00),Food\n3/2/2021,B\n"

	_, err := c.Convert("creditunion", "Assets:Checking", strings.NewReader(input))
	var malformed *model.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 3, malformed.Row)
	assert.Equal(t, "Amount", malformed.Field)
}

func TestConvert_MultilineDescriptionRejected(t *testing.T) {
	c, _ := newConverter(rules.DefaultRules()...)
	input := "Posted Date,Description,Amount,Category\n3/1/2021,\"UWM RESTAU MILWAUKEE\n2021/01/01 Fake\",(5.00),Food\n"

	_, err := c.Convert("creditunion", "Assets:Checking", strings.NewReader(input))
	var malformed *model.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "Description", malformed.Field)
}

func TestConvert_InvalidCategoryFallsBack(t *testing.T) {
	c, _ := newConverter()
	input := "Posted Date,Description,Amount,Category\n3/1/2021,A,(1.00),Food:\n"

	res, err := c.Convert("creditunion", "Assets:Checking", strings.NewReader(input))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "    Expenses:Uncategorized\n")
	assert.NotContains(t, res.Text, "Expenses:Food:")
}

func TestConvert_UnknownInstitution(t *testing.T) {
	c, _ := newConverter()
	_, err := c.Convert("nope", "Assets:Checking", strings.NewReader(""))
	assert.ErrorContains(t, err, `unknown institution "nope"`)
}

func TestConvert_RulesLoadedOncePerRun(t *testing.T) {
	c, store := newConverter(rules.DefaultRules()...)
	input := "Posting Date,Description,Amount\n01/03/2025,A,-1.00\n01/04/2025,B,-2.00\n"

	for i := 0; i < 2; i++ {
		_, err := c.Convert("chase", "Assets:Checking", strings.NewReader(input))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.loads)
}

func TestConvert_MissingRules(t *testing.T) {
	cache := rules.NewCache(&rules.CSVStore{Path: filepath.Join(t.TempDir(), "missing.csv")})
	c := New(importer.DefaultRegistry(importer.Options{}), cache)

	_, err := c.Convert("chase", "Assets:Checking", strings.NewReader("Posting Date,Description,Amount\n"))
	var missing *model.MissingFileError
	assert.True(t, errors.As(err, &missing))
}

func TestConvert_Logging(t *testing.T) {
	c, _ := newConverter()
	var logBuf bytes.Buffer
	c.Logger = zerolog.New(&logBuf)

	_, err := c.Convert("catbank", "Assets:Checking", strings.NewReader("Date,Description,Type,Credit,Debit\n3/1/2021,X,WIRE,1.00,\n"))
	require.NoError(t, err)
	assert.Contains(t, logBuf.String(), `"value":"WIRE"`)
	assert.Contains(t, logBuf.String(), `"flagged":1`)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "checking.ledger")
	c, _ := newConverter(rules.DefaultRules()...)

	res, err := c.ConvertFile("chase", "Assets:Checking", "../../testdata/chase_checking.csv", out, false)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Stats.Entries())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Text, string(data))

	// Append mode adds a second copy.
	_, err = c.ConvertFile("chase", "Assets:Checking", "../../testdata/chase_checking.csv", out, true)
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Text+res.Text, string(data))
}

func TestConvertFile_MissingInput(t *testing.T) {
	c, _ := newConverter()
	_, err := c.ConvertFile("chase", "Assets:Checking", filepath.Join(t.TempDir(), "nope.csv"), filepath.Join(t.TempDir(), "out.ledger"), false)

	var missing *model.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestConvertFile_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.csv")
	out := filepath.Join(dir, "out.ledger")
	require.NoError(t, os.WriteFile(in, []byte("Posting Date,Description,Amount\n01/03/2025,A,-1.00\nbad,B,-2.00\n"), 0o644))
	require.NoError(t, os.WriteFile(out, []byte("existing\n"), 0o644))

	c, _ := newConverter()
	_, err := c.ConvertFile("chase", "Assets:Checking", in, out, false)
	require.Error(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "existing\n", string(data), "failed run must not touch the output")
}

func TestStatsMerge(t *testing.T) {
	a := newStats()
	a.Rows, a.Recognized = 2, 1
	a.Totals["Expenses:X"] = decimal.RequireFromString("-1.50")

	b := newStats()
	b.Rows, b.Fallback = 3, 3
	b.Totals["Expenses:X"] = decimal.RequireFromString("-2.00")

	var total Stats
	total.Merge(a)
	total.Merge(b)
	assert.Equal(t, 5, total.Rows)
	assert.Equal(t, 4, total.Entries())
	assert.True(t, decimal.RequireFromString("-3.50").Equal(total.Totals["Expenses:X"]))
}
