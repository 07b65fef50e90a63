package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"scsslint/internal/settings"
)

var (
	setEnabled  bool
	setExe      string
	setConfig   string
	setWarnings bool
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage workspace scss-lint settings",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsValidateCmd())
	cmd.AddCommand(newSettingsWatchCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored workspace settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShow,
	}
}

func newSettingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change workspace settings",
		Long: "Change workspace settings. Only the flags given are applied; the file is\n" +
			"written only when something changed. Pass --config \"\" to let scss-lint\n" +
			"search for its config file.",
		Args: cobra.NoArgs,
		RunE: runSettingsSet,
	}
	cmd.Flags().BoolVar(&setEnabled, "enabled", true, "Enable scss-lint for this workspace")
	cmd.Flags().StringVar(&setExe, "exe", "", "Path to the scss-lint executable")
	cmd.Flags().StringVar(&setConfig, "config", "", "Path to the scss-lint config file (empty searches for one)")
	cmd.Flags().BoolVar(&setWarnings, "warnings", false, "Treat all issues as warnings")
	return cmd
}

func newSettingsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the workspace settings and query the scss-lint version",
		Args:  cobra.NoArgs,
		RunE:  runSettingsValidate,
	}
}

func newSettingsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate whenever the settings, executable or config change",
		Args:  cobra.NoArgs,
		RunE:  runSettingsWatch,
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	s, err := ws.loadSettings()
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	fmt.Fprintln(out, bold.Render("SETTINGS:")+" "+ws.store.Path())
	writeSettings(out, s)
	return nil
}

func writeSettings(out io.Writer, s settings.Settings) {
	fmt.Fprintf(out, "  %-22s %t\n", "enabled:", s.PluginEnabled)
	fmt.Fprintf(out, "  %-22s %s\n", "executable:", nonEmptyOrDash(s.ScssLintExecutable))
	fmt.Fprintf(out, "  %-22s %s (%s)\n", "config:", nonEmptyOrDash(s.ScssLintConfigFile), s.ConfigMode())
	fmt.Fprintf(out, "  %-22s %t\n", "issues as warnings:", s.TreatAllIssuesAsWarnings)
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	stored, err := ws.loadSettings()
	if err != nil {
		return err
	}

	svc := ws.newService(stored)
	defer svc.Close()

	var fieldErrs []settings.FieldError
	flags := cmd.Flags()
	if flags.Changed("enabled") {
		svc.SetPluginEnabled(setEnabled)
	}
	if flags.Changed("exe") {
		fieldErrs = append(fieldErrs, svc.SetExecutable(setExe)...)
	}
	if flags.Changed("config") {
		fieldErrs = append(fieldErrs, svc.SetConfigFile(setConfig)...)
	}
	if flags.Changed("warnings") {
		svc.SetTreatAllIssuesAsWarnings(setWarnings)
	}

	edited := svc.Settings()
	for _, fe := range dedupeFieldErrors(fieldErrs) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", fe.Message)
	}

	if edited.Equal(stored) {
		fmt.Fprintln(cmd.OutOrStdout(), "settings unchanged")
		return nil
	}
	if err := ws.paths.EnsureMetaDirs(); err != nil {
		return err
	}
	if err := ws.store.Save(edited); err != nil {
		return err
	}
	ws.logger.Info("settings saved", "path", ws.store.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", ws.store.Path())
	writeSettings(cmd.OutOrStdout(), edited)
	return nil
}

// dedupeFieldErrors keeps the last error reported for each field.
func dedupeFieldErrors(errs []settings.FieldError) []settings.FieldError {
	last := make(map[string]int, len(errs))
	for i, fe := range errs {
		last[fe.Field] = i
	}
	out := make([]settings.FieldError, 0, len(last))
	for i, fe := range errs {
		if last[fe.Field] == i {
			out = append(out, fe)
		}
	}
	return out
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	stored, err := ws.loadSettings()
	if err != nil {
		return err
	}
	svc := ws.newService(stored)
	defer svc.Close()

	res := svc.Validate(cmdContext(cmd))
	if err := writeValidationResult(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	switch res.Status {
	case settings.StatusInvalid, settings.StatusUnavailable:
		return fmt.Errorf("settings are %s", res.Status)
	}
	return nil
}

func writeValidationResult(out io.Writer, res settings.Result) error {
	if outputJSON {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	var label string
	switch res.Status {
	case settings.StatusValid:
		label = green.Render("VALID")
	case settings.StatusDisabled:
		label = yellow.Render("DISABLED")
	default:
		label = red.Render(string(res.Status))
	}
	fmt.Fprintf(out, "%s", label)
	if res.Version != "" {
		fmt.Fprintf(out, "    %s", res.Version)
	}
	fmt.Fprintln(out)
	for _, fe := range res.Errors {
		fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
		if fe.FixIt != "" {
			fmt.Fprintf(out, "    %s\n", fe.FixIt)
		}
	}
	if res.VersionError != "" {
		fmt.Fprintf(out, "  version: %s\n", res.VersionError)
	}
	return nil
}

func runSettingsWatch(cmd *cobra.Command, _ []string) error {
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
	svc := ws.newService(stored)
	defer svc.Close()

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	unsubscribe := svc.Subscribe(settings.ObserverFunc(func(res settings.Result) {
		mu.Lock()
		defer mu.Unlock()
		if err := writeValidationResult(out, res); err != nil {
			ws.logger.Warn("write validation result", "error", err)
		}
	}))
	defer unsubscribe()

	watcher, err := settings.NewWatcher(ws.store, svc, settings.DefaultDebounce, ws.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	svc.Revalidate()
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", ws.store.Path())
	<-ctx.Done()
	return nil
}
