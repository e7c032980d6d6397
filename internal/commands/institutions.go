package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerize-dev/ledgerize/internal/config"
	"github.com/ledgerize-dev/ledgerize/internal/importer"
)

func newInstitutionsCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "institutions",
		Short: "List supported institutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstitutions(cmd.OutOrStdout(), cfgPath)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", config.FileName, "config file with custom institutions, if present")

	return cmd
}

func runInstitutions(out io.Writer, cfgPath string) error {
	reg := importer.DefaultRegistry(importer.Options{})

	if _, err := os.Stat(cfgPath); err == nil {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if reg, err = cfg.Registry(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	for _, name := range reg.Names() {
		fmt.Fprintln(out, name)
	}
	return nil
}
