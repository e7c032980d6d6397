package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerize-dev/ledgerize/internal/model"
)

func TestConvert_CatBank(t *testing.T) {
	dir := t.TempDir()
	in := copyTestdata(t, dir, "catbank_export.csv")
	rulesPath := copyTestdata(t, dir, "rules.csv")
	outPath := filepath.Join(dir, "out.ledger")

	out, stderr, err := runLedgerize(t, "convert",
		"--institution", "catbank", "--account", "Assets:Checking", "--rules", rulesPath, in, outPath)
	require.NoError(t, err)
	assert.Equal(t, "Wrote 4 entries to "+outPath+" (3 recognized, 1 fallback, 1 flagged)\n", out)
	assert.Contains(t, stderr, "Unknown transaction type")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "\n2021/03/01 * Payroll, ACME\n    ; PAYROLL ACME CORP\n    Assets:Checking  1200.00\n    Income:Salary\n\n")
	assert.Contains(t, text, "\n2021/03/03 * East Garden\n    ; EAST GARDEN FOODS\n    Assets:Checking  -18.75\n    Expenses:Food:DiningOut\n\n")
	assert.Contains(t, text, "; ??? unknown transaction type \"CHECK\" (row 5)\n")
	assert.Contains(t, text, "2021/03/05 SHELL OIL 5543\n    Assets:Checking  -32.10\n    Expenses:Uncategorized\n\n")
}

func TestConvert_AppendAndFallbackFlag(t *testing.T) {
	dir := t.TempDir()
	in := copyTestdata(t, dir, "chase_checking.csv")
	rulesPath := copyTestdata(t, dir, "rules.csv")
	outPath := filepath.Join(dir, "out.ledger")
	require.NoError(t, os.WriteFile(outPath, []byte("; opening\n"), 0o644))

	_, _, err := runLedgerize(t, "convert", "--append",
		"--institution", "chase", "--account", "Assets:Checking",
		"--rules", rulesPath, "--fallback-account", "Expenses:Business", in, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Regexp(t, `^; opening\n2025/01/03 GITHUB \*PRO SUBSCRIPTION\n`, string(data))
	assert.Contains(t, string(data), "    Expenses:Business\n")
}

func TestConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()
	rulesPath := copyTestdata(t, dir, "rules.csv")

	_, _, err := runLedgerize(t, "convert",
		"--institution", "chase", "--account", "Assets:Checking", "--rules", rulesPath,
		filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.ledger"))

	var missing *model.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, filepath.Join(dir, "nope.csv"), missing.Path)
}

func TestConvert_MissingRules(t *testing.T) {
	dir := t.TempDir()
	in := copyTestdata(t, dir, "chase_checking.csv")
	outPath := filepath.Join(dir, "out.ledger")

	_, _, err := runLedgerize(t, "convert",
		"--institution", "chase", "--account", "Assets:Checking",
		"--rules", filepath.Join(dir, "rules.csv"), in, outPath)
	var missing *model.MissingFileError
	require.True(t, errors.As(err, &missing))

	_, statErr := os.Stat(outPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output on failure")
}

func TestConvert_Validation(t *testing.T) {
	dir := t.TempDir()
	in := copyTestdata(t, dir, "chase_checking.csv")
	rulesPath := copyTestdata(t, dir, "rules.csv")
	outPath := filepath.Join(dir, "out.ledger")

	_, _, err := runLedgerize(t, "convert", "--institution", "chase", in, outPath)
	assert.ErrorContains(t, err, "account")

	_, _, err = runLedgerize(t, "convert", "--institution", "chase", "--account", "Assets::Checking", "--rules", rulesPath, in, outPath)
	assert.ErrorContains(t, err, "account")

	_, _, err = runLedgerize(t, "convert", "--institution", "nope", "--account", "Assets:Checking", "--rules", rulesPath, in, outPath)
	assert.ErrorContains(t, err, `unknown institution "nope"`)
}

func TestConvert_WarnsOnNonBalanceAccount(t *testing.T) {
	dir := t.TempDir()
	in := copyTestdata(t, dir, "chase_checking.csv")
	rulesPath := copyTestdata(t, dir, "rules.csv")

	_, stderr, err := runLedgerize(t, "convert", "--institution", "chase", "--account", "Expenses:Card",
		"--rules", rulesPath, in, filepath.Join(dir, "out.ledger"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "not under Assets or Liabilities")

	_, stderr, err = runLedgerize(t, "--log-level", "error", "convert", "--institution", "chase", "--account", "Expenses:Card",
		"--rules", rulesPath, in, filepath.Join(dir, "out.ledger"))
	require.NoError(t, err)
	assert.NotContains(t, stderr, "not under Assets or Liabilities")
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := runLedgerize(t, "--log-level", "loud", "institutions")
	assert.ErrorContains(t, err, "invalid --log-level")
}
