package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scsslint/internal/config"
	"scsslint/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit application configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigEditCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	}
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the workspace configuration in $EDITOR",
		RunE:  runConfigEdit,
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print which configuration file applies to the workspace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pp, err := paths.Resolve(projectDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.Locate(pp.Root))
			return nil
		},
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	cfg, _, err := config.LoadFor(pp.Root)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	if err := ensureConfigFileExists(pp); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}

	parts := splitEditorCommand(editor)
	if len(parts) == 0 {
		return fmt.Errorf("invalid EDITOR value: %q", editor)
	}

	parts = append(parts, pp.ConfigFile)

	execCmd := exec.CommandContext(cmdContext(cmd), parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Dir = pp.Root

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	if _, err := config.Load(pp.ConfigFile); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return nil
}

// ensureConfigFileExists seeds the workspace config file with defaults.
func ensureConfigFileExists(pp paths.ProjectPaths) error {
	if _, err := os.Stat(pp.ConfigFile); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(pp.ConfigFile), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	cfg := config.Default()
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func splitEditorCommand(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	// Basic splitting on whitespace; handles simple EDITOR values like "nano" or "code -w".
	return strings.Fields(value)
}
