package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerize-dev/ledgerize/internal/model"
	"github.com/ledgerize-dev/ledgerize/internal/recognize"
	"github.com/ledgerize-dev/ledgerize/internal/rules"
)

func newRulesCommand() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit categorization rules",
	}
	cmd.PersistentFlags().StringVar(&rulesFile, "rules", "rules.csv", "categorization rules file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(cmd.OutOrStdout(), rulesFile)
		},
	}

	matchCmd := &cobra.Command{
		Use:   "match <description>",
		Short: "Show which rule a transaction description would match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesMatch(cmd.OutOrStdout(), rulesFile, args[0])
		},
	}

	var add model.Rule
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append a rule with the lowest priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesAdd(cmd.OutOrStdout(), rulesFile, add)
		},
	}
	addCmd.Flags().StringVar(&add.Pattern, "match", "", "substring to look for in descriptions (required)")
	_ = addCmd.MarkFlagRequired("match")
	addCmd.Flags().StringVar(&add.Description, "description", "", "replacement description (required)")
	_ = addCmd.MarkFlagRequired("description")
	addCmd.Flags().StringVar(&add.Account, "account", "", "category account (required)")
	_ = addCmd.MarkFlagRequired("account")

	cmd.AddCommand(listCmd, matchCmd, addCmd)
	return cmd
}

func runRulesList(out io.Writer, rulesFile string) error {
	rs, err := rules.Open(rulesFile).Load()
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		fmt.Fprintln(out, "No rules defined")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMATCH\tDESCRIPTION\tACCOUNT")
	for i, r := range rs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Pattern, r.Description, r.Account)
	}
	return tw.Flush()
}

func runRulesMatch(out io.Writer, rulesFile, description string) error {
	rs, err := rules.Open(rulesFile).Load()
	if err != nil {
		return err
	}

	r, i, ok := recognize.Match(description, rs)
	if !ok {
		fmt.Fprintln(out, "no match")
		return nil
	}
	fmt.Fprintf(out, "rule %d: %q -> %s (%s)\n", i+1, r.Pattern, r.Description, r.Account)
	return nil
}

func runRulesAdd(out io.Writer, rulesFile string, r model.Rule) error {
	store := rules.Open(rulesFile)
	rs, err := store.Load()
	if err != nil {
		return err
	}
	for _, existing := range rs {
		if existing.Pattern == r.Pattern {
			return fmt.Errorf("a rule matching %q already exists", r.Pattern)
		}
	}

	if err := store.Save(append(rs, r)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added rule %d: %q -> %s\n", len(rs)+1, r.Pattern, r.Account)
	return nil
}
