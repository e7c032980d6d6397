package commands

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ledgerize-dev/ledgerize/internal/accounts"
	"github.com/ledgerize-dev/ledgerize/internal/convert"
	"github.com/ledgerize-dev/ledgerize/internal/importer"
	"github.com/ledgerize-dev/ledgerize/internal/rules"
)

type convertOptions struct {
	institution     string
	account         string
	rulesFile       string
	fallbackAccount string
	categoryPrefix  string
	appendMode      bool
	skipMalformed   bool
}

func newConvertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <input.csv> <output.ledger>",
		Short: "Convert one bank export into ledger entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.institution, "institution", "", "institution that produced the export (required)")
	_ = cmd.MarkFlagRequired("institution")
	cmd.Flags().StringVar(&opts.account, "account", "", "account the statement belongs to (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&opts.rulesFile, "rules", "rules.csv", "categorization rules file")
	cmd.Flags().StringVar(&opts.fallbackAccount, "fallback-account", accounts.DefaultFallback, "account for unrecognized entries")
	cmd.Flags().StringVar(&opts.categoryPrefix, "category-prefix", accounts.DefaultCategoryPrefix, "prefix for accounts derived from bank categories")
	cmd.Flags().BoolVar(&opts.appendMode, "append", false, "append to the output instead of replacing it")
	cmd.Flags().BoolVar(&opts.skipMalformed, "skip-malformed", false, "skip malformed rows instead of failing")

	return cmd
}

func runConvert(out io.Writer, opts convertOptions, inPath, outPath string) error {
	if err := checkPrimaryAccount(opts.account); err != nil {
		return err
	}
	if err := accounts.Validate(opts.fallbackAccount); err != nil {
		return fmt.Errorf("fallback account: %w", err)
	}

	reg := importer.DefaultRegistry(importer.Options{
		FallbackAccount: opts.fallbackAccount,
		CategoryPrefix:  opts.categoryPrefix,
	})

	conv := convert.New(reg, rules.NewCache(rules.Open(opts.rulesFile)))
	conv.Logger = log.Logger
	conv.SkipMalformed = opts.skipMalformed

	res, err := conv.ConvertFile(opts.institution, opts.account, inPath, outPath, opts.appendMode)
	if err != nil {
		return err
	}

	printResult(out, outPath, res.Stats)
	return nil
}

// checkPrimaryAccount validates a statement account and warns when it is not
// a balance sheet account.
func checkPrimaryAccount(account string) error {
	if err := accounts.Validate(account); err != nil {
		return fmt.Errorf("account: %w", err)
	}
	switch accounts.TypeOf(account) {
	case accounts.TypeAssets, accounts.TypeLiabilities:
	default:
		log.Warn().Str("account", account).Msg("Statement account is not under Assets or Liabilities")
	}
	return nil
}

func printResult(out io.Writer, outPath string, s convert.Stats) {
	fmt.Fprintf(out, "Wrote %d entries to %s (%d recognized, %d fallback", s.Entries(), outPath, s.Recognized, s.Fallback)
	if s.Flagged > 0 {
		fmt.Fprintf(out, ", %d flagged", s.Flagged)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", s.Skipped)
	}
	fmt.Fprintln(out, ")")
}
