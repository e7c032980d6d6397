package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerize-dev/ledgerize/internal/config"
	"github.com/ledgerize-dev/ledgerize/internal/gitops"
	"github.com/ledgerize-dev/ledgerize/internal/rules"
)

func newInitCommand() *cobra.Command {
	var rulesFile string
	var initGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledgerize project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, rulesFile, initGit)
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "rules.csv", "rules file to create (.csv or .yaml)")
	cmd.Flags().BoolVar(&initGit, "git", false, "initialize a git repository and commit the new project")

	return cmd
}

func runInit(out io.Writer, dir, rulesFile string, initGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory logs: %w", err)
	}

	cfg := config.Default()
	cfg.Rules = rulesFile
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	// Keep rules the user already has.
	rulesPath := filepath.Join(dir, rulesFile)
	if _, err := os.Stat(rulesPath); errors.Is(err, fs.ErrNotExist) {
		if err := rules.Open(rulesPath).Save(rules.DefaultRules()); err != nil {
			return fmt.Errorf("writing rules: %w", err)
		}
	}

	if !initGit {
		fmt.Fprintf(out, "Initialized ledgerize project at %s\n", dir)
		return nil
	}

	repo := gitops.Repo{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	if !repo.IsRepo() {
		if err := repo.Init(); err != nil {
			return err
		}
	}
	hash, err := repo.CommitAll("init: ledgerize project")
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledgerize project at %s (%s)\n", dir, hash)
	return nil
}
