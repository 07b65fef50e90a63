package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"scsslint/internal/tools"
	"scsslint/internal/tui"
)

var toolsRefresh bool

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect scss-lint installations",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsConfigsCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scss-lint executables found on this system",
		RunE:  runToolsList,
	}
	cmd.Flags().BoolVar(&toolsRefresh, "refresh", false, "Ignore recorded versions and query every executable again")
	return cmd
}

func newToolsConfigsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List scss-lint config files found in the workspace",
		RunE:  runToolsConfigs,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	opts := ws.detectOptions()
	if path, err := tools.DefaultManifestPath(); err == nil {
		opts.Manifest = tools.NewManifestStore(path, 0)
		if toolsRefresh {
			opts.Manifest.Forget()
		}
	} else {
		ws.logger.Debug("probe manifest disabled", "error", err)
	}

	var statuses []tools.Status
	tui.WithStatus(cmd.ErrOrStderr(), "Probing scss-lint candidates...", func() {
		statuses = tools.Detect(cmdContext(cmd), opts)
	})

	if outputJSON {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printStatusTable(cmd, statuses)
	return nil
}

func runToolsConfigs(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	found := ws.locator.FindConfigCandidates(ws.paths.Root)
	if outputJSON {
		if found == nil {
			found = []string{}
		}
		data, err := json.MarshalIndent(found, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	out := cmd.OutOrStdout()
	if len(found) == 0 {
		fmt.Fprintln(out, "(no config files)")
		return nil
	}
	for _, path := range found {
		fmt.Fprintln(out, path)
	}
	return nil
}

func printStatusTable(cmd *cobra.Command, statuses []tools.Status) {
	out := cmd.OutOrStdout()
	if len(statuses) == 0 {
		fmt.Fprintln(out, "(no tool statuses)")
		return
	}

	rows := make([]tools.Status, len(statuses))
	copy(rows, statuses)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Satisfied && !rows[j].Satisfied
	})

	fmt.Fprintf(out, "%-10s %-20s %-7s %s\n", "Tool", "Version", "OK", "Path")
	for _, st := range rows {
		ok := "no"
		if st.Satisfied {
			ok = "yes"
		}
		fmt.Fprintf(out, "%-10s %-20s %-7s %s\n", st.Tool, nonEmptyOrDash(st.Version), ok, nonEmptyOrDash(st.Path))
		if st.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", st.Error)
		}
		for _, note := range st.Notes {
			fmt.Fprintf(out, "  hint: %s\n", note)
		}
	}
}
