package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"scsslint/internal/config"
	"scsslint/internal/paths"
	"scsslint/internal/settings"
	"scsslint/internal/tools"
	"scsslint/internal/tui"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that scss-lint is installed and configured for this workspace",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"` // "ok", "warning", "error"
	Summary string   `json:"summary"`
	Hints   []string `json:"hints,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{tolerateConfigErr: true})
	if err != nil {
		return err
	}
	defer ws.Close()

	var checks []healthCheck
	checks = append(checks, checkConfig(ws.configPath, ws.cfg, ws.configErr))

	stored, storeErr := ws.loadSettings()
	checks = append(checks, checkSettings(ws.store.Path(), stored, storeErr))
	if storeErr != nil {
		return writeDoctorResult(cmd, ws.paths.Root, checks)
	}

	exe := stored.LintSettings(ws.paths.Root).ExecutablePath()
	exeCheck, exe := checkExecutable(ws, exe)
	checks = append(checks, exeCheck)
	checks = append(checks, checkScssLintConfig(ws, stored))

	if exeCheck.Status != "error" {
		ls := tools.NewLintSettings(exe, ws.paths.Root, "", false)
		var version string
		var verr error
		tui.WithStatus(cmd.ErrOrStderr(), "Querying scss-lint version...", func() {
			version, verr = ws.versions.GetVersion(cmdContext(cmd), ls)
		})
		checks = append(checks, checkVersion(version, verr, ws.cfg.Lint.MinimumVersion))
	}

	return writeDoctorResult(cmd, ws.paths.Root, checks)
}

func checkConfig(path string, cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}
	exists, _ := paths.FileExists(path)
	source := "defaults"
	if exists {
		source = path
	}
	return healthCheck{
		Name:    "Config",
		Status:  "ok",
		Summary: fmt.Sprintf("%s; timeout %s, concurrency %d", source, cfg.Timeout(), cfg.Lint.Concurrency),
	}
}

func checkSettings(path string, s settings.Settings, err error) healthCheck {
	if err != nil {
		return healthCheck{Name: "Settings", Status: "error", Summary: err.Error()}
	}
	if !s.PluginEnabled {
		return healthCheck{
			Name:    "Settings",
			Status:  "warning",
			Summary: "scss-lint is disabled for this workspace",
			Hints:   []string{"scsslint settings set --enabled=true"},
		}
	}
	exists, _ := paths.FileExists(path)
	if !exists {
		return healthCheck{Name: "Settings", Status: "ok", Summary: "not saved yet; using defaults"}
	}
	return healthCheck{Name: "Settings", Status: "ok", Summary: path}
}

// checkExecutable validates the configured executable, or the first
// discovered candidate when none is configured. It returns the path the
// version check should use.
func checkExecutable(ws *workspace, configured string) (healthCheck, string) {
	if configured != "" {
		if err := tools.CheckExecutable(configured); err != nil {
			hc := healthCheck{Name: "Executable", Status: "error", Summary: err.Error()}
			if found := ws.locator.FindExecutableCandidates(); len(found) > 0 {
				hc.Hints = []string{"Fix it: use " + found[0]}
			}
			return hc, configured
		}
		return healthCheck{Name: "Executable", Status: "ok", Summary: configured}, configured
	}

	found := ws.locator.FindExecutableCandidates()
	if len(found) == 0 {
		return healthCheck{
			Name:    "Executable",
			Status:  "error",
			Summary: "scss-lint not configured and not found",
			Hints:   tools.InstallHints(runtime.GOOS),
		}, ""
	}
	return healthCheck{
		Name:    "Executable",
		Status:  "warning",
		Summary: fmt.Sprintf("not configured; discovered %s", found[0]),
		Hints:   []string{"scsslint settings set --exe " + found[0]},
	}, found[0]
}

func checkScssLintConfig(ws *workspace, s settings.Settings) healthCheck {
	if s.ConfigMode() == settings.ConfigModeExplicit {
		path := s.LintSettings(ws.paths.Root).ConfigPath()
		if err := tools.CheckConfig(path); err != nil {
			hc := healthCheck{Name: "Lint config", Status: "error", Summary: err.Error()}
			if found := ws.locator.FindConfigCandidates(ws.paths.Root); len(found) > 0 {
				hc.Hints = []string{"Fix it: use " + found[0]}
			}
			return hc
		}
		return healthCheck{Name: "Lint config", Status: "ok", Summary: path}
	}
	found := ws.locator.FindConfigCandidates(ws.paths.Root)
	if len(found) == 0 {
		return healthCheck{Name: "Lint config", Status: "ok", Summary: "search mode; none found, scss-lint defaults apply"}
	}
	return healthCheck{Name: "Lint config", Status: "ok", Summary: "search mode; using " + found[0]}
}

func checkVersion(version string, err error, minimum string) healthCheck {
	if err != nil {
		return healthCheck{Name: "Version", Status: "error", Summary: err.Error()}
	}
	minimum = tools.ScssLint.WithMinimum(minimum).MinimumVersion
	if !tools.MeetsMinimum(version, minimum) {
		return healthCheck{
			Name:    "Version",
			Status:  "warning",
			Summary: fmt.Sprintf("%s is below minimum %s", version, minimum),
			Hints:   []string{"gem update scss_lint"},
		}
	}
	return healthCheck{Name: "Version", Status: "ok", Summary: version}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("WORKSPACE HEALTH:")+" "+projectRoot)

	failed := false
	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
			failed = true
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
		for _, hint := range c.Hints {
			fmt.Fprintf(out, "  %-12s %s\n", "", hint)
		}
	}

	if failed {
		fmt.Fprintf(out, "\nSee %s for setup instructions.\n", tools.HowToUseURL)
	}
	return nil
}
