package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ledgerize-dev/ledgerize/internal/config"
	"github.com/ledgerize-dev/ledgerize/internal/convert"
	"github.com/ledgerize-dev/ledgerize/internal/gitops"
	"github.com/ledgerize-dev/ledgerize/internal/rules"
	"github.com/ledgerize-dev/ledgerize/internal/runlog"
)

func newRunCommand() *cobra.Command {
	var cfgPath string
	var sourceName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Convert every source listed in ledgerize.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.OutOrStdout(), cfgPath, sourceName, time.Now)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", config.FileName, "path to the config file")
	cmd.Flags().StringVar(&sourceName, "source", "", "convert only the named source")

	return cmd
}

func runRun(out io.Writer, cfgPath, sourceName string, now func() time.Time) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(filepath.Join(cfg.Dir(), ".env")); err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(reg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sources := cfg.Sources
	if sourceName != "" {
		s, ok := cfg.Source(sourceName)
		if !ok {
			return fmt.Errorf("no source named %q in %s", sourceName, cfgPath)
		}
		sources = []config.Source{s}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured in %s", cfgPath)
	}

	// One cache for the whole run: the rules file is read at most once.
	conv := convert.New(reg, rules.NewCache(rules.Open(cfg.Resolve(cfg.Rules))))
	conv.Logger = log.Logger
	conv.SkipMalformed = cfg.SkipMalformed

	var total convert.Stats
	var names []string
	for _, s := range sources {
		if err := checkPrimaryAccount(s.Account); err != nil {
			return fmt.Errorf("source %s: %w", s.Name, err)
		}

		outPath := cfg.Resolve(s.Output)
		res, err := conv.ConvertFile(s.Institution, s.Account, cfg.Resolve(s.Input), outPath, s.Append)
		if err != nil {
			return fmt.Errorf("source %s: %w", s.Name, err)
		}
		printResult(out, outPath, res.Stats)
		total.Merge(res.Stats)
		names = append(names, s.Name)

		if cfg.RunLog != "" {
			entry := runlog.Entry{
				Timestamp:   now().UTC(),
				Source:      s.Name,
				Institution: s.Institution,
				Input:       s.Input,
				Output:      s.Output,
				Entries:     res.Stats.Entries(),
				Recognized:  res.Stats.Recognized,
				Fallback:    res.Stats.Fallback,
				Flagged:     res.Stats.Flagged,
			}
			if err := runlog.Append(cfg.Resolve(cfg.RunLog), []runlog.Entry{entry}); err != nil {
				return fmt.Errorf("writing run log: %w", err)
			}
		}
	}

	if len(sources) > 1 {
		fmt.Fprintf(out, "Total: %d entries from %d sources\n", total.Entries(), len(sources))
	}
	printTotals(out, total)

	if cfg.Git.AutoCommit {
		return commitRun(out, cfg, total, names)
	}
	return nil
}

// commitRun commits the converted ledgers when the project is a git
// repository with something to commit.
func commitRun(out io.Writer, cfg *config.Config, total convert.Stats, names []string) error {
	repo := gitops.Repo{Dir: cfg.Dir(), AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	if !repo.IsRepo() {
		log.Debug().Str("dir", repo.Dir).Msg("Not a git repository, skipping commit")
		return nil
	}
	changed, err := repo.HasChanges()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	msg := fmt.Sprintf("import: %d entries from %s", total.Entries(), strings.Join(names, ", "))
	hash, err := repo.CommitAll(msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed %s\n", hash)
	return nil
}

func printTotals(out io.Writer, s convert.Stats) {
	accts := s.Accounts()
	if len(accts) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, a := range accts {
		fmt.Fprintf(tw, "  %s\t%s\n", a, s.Totals[a].StringFixed(2))
	}
	tw.Flush()
}
