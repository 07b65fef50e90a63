package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"scsslint/internal/tools"
	"scsslint/internal/tui"
)

var versionExe string

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of the configured scss-lint executable",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().StringVar(&versionExe, "exe", "", "scss-lint executable (overrides workspace settings)")
	return cmd
}

type versionReport struct {
	Executable string `json:"executable"`
	Version    string `json:"version"`
	Number     string `json:"number,omitempty"`
	Minimum    string `json:"minimum,omitempty"`
	Satisfied  bool   `json:"satisfied"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	stored, err := ws.loadSettings()
	if err != nil {
		return err
	}
	ls, err := resolveLintSettings(ws, stored, lintOverrides{exe: versionExe, exeSet: cmd.Flags().Changed("exe")})
	if err != nil {
		return err
	}

	var version string
	tui.WithStatus(cmd.ErrOrStderr(), "Querying scss-lint version...", func() {
		version, err = ws.versions.GetVersion(cmdContext(cmd), ls)
	})
	if err != nil {
		return err
	}

	minimum := tools.ScssLint.WithMinimum(ws.cfg.Lint.MinimumVersion).MinimumVersion
	report := versionReport{
		Executable: ls.ExecutablePath(),
		Version:    version,
		Number:     tools.VersionNumber(version),
		Minimum:    minimum,
		Satisfied:  tools.MeetsMinimum(version, minimum),
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", report.Version, report.Executable)
	if !report.Satisfied {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: version is below the minimum supported %s\n", minimum)
	}
	return nil
}
