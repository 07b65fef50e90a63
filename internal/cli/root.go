package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	outputJSON bool
	verbose    bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scsslint",
		Short:         "Locate, validate and run scss-lint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to workspace directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newDoctorCmd())

	configCmd := newConfigCmd()
	cmd.AddCommand(configCmd)
	// config output is always YAML.
	if f := configCmd.InheritedFlags().Lookup("json"); f != nil {
		f.Hidden = true
	}

	return cmd
}
