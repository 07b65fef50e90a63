package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"scsslint/internal/lint"
	"scsslint/internal/paths"
	"scsslint/internal/settings"
	"scsslint/internal/tools"
	"scsslint/internal/tui"
)

var (
	lintExe        string
	lintConfig     string
	lintCwd        string
	lintTimeout    int
	lintNoProgress bool
)

// errPluginDisabled is returned by lint when the workspace has scss-lint
// switched off and no executable was passed explicitly.
var errPluginDisabled = errors.New("scss-lint is disabled for this workspace (enable it with `scsslint settings set --enabled=true` or pass --exe)")

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [files|dirs...]",
		Short: "Run scss-lint on SCSS files",
		Long: "Run scss-lint on the given files, or on every SCSS file below the working directory.\n" +
			"Findings never fail the command; a non-zero exit means scss-lint could not run.",
		RunE: runLint,
	}

	cmd.Flags().StringVar(&lintExe, "exe", "", "scss-lint executable (overrides workspace settings)")
	cmd.Flags().StringVar(&lintConfig, "config", "", "scss-lint config file (overrides workspace settings; empty searches the workspace)")
	cmd.Flags().StringVar(&lintCwd, "cwd", "", "Working directory for scss-lint (default: workspace root)")
	cmd.Flags().IntVar(&lintTimeout, "timeout", 0, "Per-file timeout in seconds (default from config runner.timeout_s)")
	cmd.Flags().BoolVar(&lintNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

type lintReport struct {
	Project    string           `json:"project"`
	Executable string           `json:"executable"`
	Config     string           `json:"config,omitempty"`
	Files      []lintFileReport `json:"files"`
	Summary    lint.Summary     `json:"summary"`
}

type lintFileReport struct {
	lint.FileResult
	Error string `json:"error,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	ws, err := openWorkspace(cmd, workspaceOptions{logFile: true})
	if err != nil {
		return err
	}
	defer ws.Close()

	stored, err := ws.loadSettings()
	if err != nil {
		return err
	}
	ls, err := resolveLintSettings(ws, stored, lintOverridesFromFlags(cmd.Flags()))
	if err != nil {
		return err
	}

	files, err := lint.ExpandFiles(ls.WorkingDirectory(), args, ws.cfg.Lint.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no SCSS files found")
		return nil
	}

	timeout := ws.cfg.Timeout()
	if lintTimeout > 0 {
		timeout = time.Duration(lintTimeout) * time.Second
	}
	runner := lint.NewRunner(ws.invoker, ws.cfg.Lint, timeout, ws.logger)
	ws.logger.Info("linting", "files", len(files), "executable", ls.ExecutablePath(), "config", ls.ConfigPath())

	outWriter := cmd.OutOrStdout()
	mode := tui.DetectMode(outWriter, lintNoProgress, outputJSON)

	var (
		results []lint.FileResult
		lintErr error
	)
	if mode == tui.ModeTUI {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		model := tui.NewLintModel("scss-lint "+ls.ExecutablePath(), ws.paths.Root, files)
		model.OnInterrupt(cancel)
		err := tui.RunWithWork(outWriter, model, func(send func(tea.Msg)) {
			reporter := tui.NewLintReporter(send)
			results, lintErr = runner.LintFiles(ctx, ls, files, reporter.Done)
			reporter.Finish(results)
		})
		if err != nil {
			return err
		}
	} else {
		results, lintErr = runner.LintFiles(ctx, ls, files, nil)
	}

	if mode == tui.ModeJSON {
		if err := writeLintJSON(cmd, ws.paths.Root, ls, results); err != nil {
			return err
		}
	} else {
		writeLintText(cmd, ws.paths.Root, results, mode == tui.ModeTUI)
	}

	if lintErr != nil {
		return fmt.Errorf("scss-lint failed: %w", lintErr)
	}
	return nil
}

type lintOverrides struct {
	exe       string
	exeSet    bool
	config    string
	configSet bool
	cwd       string
}

// lintOverridesFromFlags reads the executable and config overrides. An
// explicitly empty --config is an override too: it selects search mode.
func lintOverridesFromFlags(flags *pflag.FlagSet) lintOverrides {
	return lintOverrides{
		exe:       lintExe,
		exeSet:    flags.Changed("exe"),
		config:    lintConfig,
		configSet: flags.Changed("config"),
		cwd:       lintCwd,
	}
}

// resolveLintSettings merges stored workspace settings with command-line
// overrides, fills in a discovered executable and config file when none is
// configured, and validates the result.
func resolveLintSettings(ws *workspace, stored settings.Settings, o lintOverrides) (tools.LintSettings, error) {
	s := stored
	if o.exeSet {
		s.ScssLintExecutable = o.exe
	} else if !s.PluginEnabled {
		return tools.LintSettings{}, errPluginDisabled
	}
	if o.configSet {
		s.ScssLintConfigFile = o.config
	}

	root := ws.paths.Root
	ls := s.LintSettings(root)
	if strings.TrimSpace(o.cwd) != "" {
		ls = tools.NewLintSettings(ls.ExecutablePath(), paths.ResolveIn(root, o.cwd), ls.ConfigPath(), ls.TreatAllIssuesAsWarnings())
	}

	if ls.ExecutablePath() == "" {
		candidates := ws.locator.FindExecutableCandidates()
		if len(candidates) == 0 {
			return tools.LintSettings{}, fmt.Errorf("scss-lint executable not configured and none found on this system; %s",
				strings.Join(tools.InstallHints(ws.detectOptions().GOOS), "; "))
		}
		ws.logger.Info("using discovered executable", "path", candidates[0])
		ls = tools.NewLintSettings(candidates[0], ls.WorkingDirectory(), ls.ConfigPath(), ls.TreatAllIssuesAsWarnings())
	}
	if err := tools.CheckExecutable(ls.ExecutablePath()); err != nil {
		return tools.LintSettings{}, err
	}

	if s.ConfigMode() == settings.ConfigModeExplicit {
		if err := tools.CheckConfig(ls.ConfigPath()); err != nil {
			return tools.LintSettings{}, err
		}
	} else if found := ws.locator.FindConfigCandidates(root); len(found) > 0 {
		ls = ls.WithConfigPath(found[0])
	}
	return ls, nil
}

func writeLintJSON(cmd *cobra.Command, root string, ls tools.LintSettings, results []lint.FileResult) error {
	report := lintReport{
		Project:    root,
		Executable: ls.ExecutablePath(),
		Config:     ls.ConfigPath(),
		Files:      make([]lintFileReport, 0, len(results)),
		Summary:    lint.Summarize(results),
	}
	for _, res := range results {
		report.Files = append(report.Files, lintFileReport{FileResult: res, Error: res.Error()})
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// writeLintText prints one line per issue and per failed file. The summary
// is skipped when the progress table already showed it.
func writeLintText(cmd *cobra.Command, root string, results []lint.FileResult, summaryShown bool) {
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) {
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", tui.DisplayPath(root, res.File), res.Error())
			continue
		}
		for _, issue := range res.Issues {
			if issue.File == "" {
				issue.File = res.File
			}
			issue.File = tui.DisplayPath(root, issue.File)
			fmt.Fprintln(out, issue.String())
		}
	}
	if !summaryShown {
		fmt.Fprintln(out, tui.SummaryLine(lint.Summarize(results)))
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
