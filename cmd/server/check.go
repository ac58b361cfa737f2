package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/spf13/cobra"
)

var checkVariant string

func init() {
	checkCmd.Flags().StringVar(&checkVariant, "variant", string(project.VariantFull), "tracker variant: basic, priority or full")
}

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a CSV file without starting a server",
	Long: `Import a CSV file into a throwaway registry and report the project count,
or the line and column of the first problem.

Examples:
  # Check an export from the full tracker
  projtrack check projects.csv

  # Check against the priority tracker columns
  projtrack check --variant priority projects.csv

  # Read from stdin
  cat projects.csv | projtrack check -`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	variant, err := project.ParseVariant(checkVariant)
	if err != nil {
		return err
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	n, err := project.NewRegistry(variant).ImportCSV(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d projects OK (%s variant)\n", n, variant)
	return nil
}
