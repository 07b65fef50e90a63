//go:build !windows

package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scsslint/internal/settings"
)

const stubScssLint = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "scss-lint 0.59.0"
  exit 0
fi
for f; do last="$f"; done
printf '{"%s":[{"line":2,"column":3,"length":1,"severity":"warning","reason":"Prefer single quotes","linter":"StringQuotes"}]}' "$last"
exit 1
`

const crashingScssLint = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "scss-lint 0.59.0"
  exit 0
fi
echo "undefined method for nil" >&2
exit 70
`

func writeStub(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scss-lint")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func writeSCSS(t *testing.T, root, name string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("a { color: \"red\"; }\n"), 0o644); err != nil {
		t.Fatalf("write scss: %v", err)
	}
	return path
}

func saveSettings(t *testing.T, root string, s settings.Settings) {
	t.Helper()
	store := settings.NewStore(filepath.Join(root, ".scsslint", "settings.yaml"))
	if err := store.Save(s); err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

func TestLintCommandPlainOutput(t *testing.T) {
	root := useWorkspace(t)
	exe := writeStub(t, stubScssLint)
	writeSCSS(t, root, "a.scss")
	saveSettings(t, root, settings.Settings{PluginEnabled: true, ScssLintExecutable: exe})

	stdout, _, err := runCommand(t, newLintCmd())
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if !strings.Contains(stdout, "a.scss:2:3: warning: Prefer single quotes [StringQuotes]") {
		t.Errorf("expected issue line, got %q", stdout)
	}
	if !strings.Contains(stdout, "1 files, 0 errors, 1 warnings") {
		t.Errorf("expected summary, got %q", stdout)
	}
}

func TestLintCommandJSON(t *testing.T) {
	root := useWorkspace(t)
	outputJSON = true
	exe := writeStub(t, stubScssLint)
	writeSCSS(t, root, filepath.Join("styles", "a.scss"))
	writeSCSS(t, root, filepath.Join("styles", "b.scss"))
	writeSCSS(t, root, filepath.Join("node_modules", "skip.scss"))

	stdout, _, err := runCommand(t, newLintCmd(), "--exe", exe, "styles")
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}

	var report lintReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if report.Executable != exe {
		t.Errorf("executable = %q, want %q", report.Executable, exe)
	}
	if len(report.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(report.Files))
	}
	if report.Summary.Warnings != 2 || report.Summary.Failed != 0 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
}

func TestLintCommandTreatsIssuesAsWarnings(t *testing.T) {
	root := useWorkspace(t)
	exe := writeStub(t, strings.Replace(stubScssLint, `"severity":"warning"`, `"severity":"error"`, 1))
	writeSCSS(t, root, "a.scss")
	saveSettings(t, root, settings.Settings{PluginEnabled: true, ScssLintExecutable: exe, TreatAllIssuesAsWarnings: true})

	stdout, _, err := runCommand(t, newLintCmd())
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if !strings.Contains(stdout, "1 files, 0 errors, 1 warnings") {
		t.Errorf("expected downgraded severity, got %q", stdout)
	}
}

func TestLintCommandDisabled(t *testing.T) {
	root := useWorkspace(t)
	writeSCSS(t, root, "a.scss")
	saveSettings(t, root, settings.Settings{PluginEnabled: false, ScssLintExecutable: "/nonexistent"})

	_, _, err := runCommand(t, newLintCmd())
	if !errors.Is(err, errPluginDisabled) {
		t.Fatalf("expected errPluginDisabled, got %v", err)
	}
}

func TestLintCommandInvalidExecutable(t *testing.T) {
	root := useWorkspace(t)
	writeSCSS(t, root, "a.scss")

	_, _, err := runCommand(t, newLintCmd(), "--exe", "/nonexistent/scss-lint")
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}

func TestLintCommandToolFailure(t *testing.T) {
	root := useWorkspace(t)
	exe := writeStub(t, crashingScssLint)
	writeSCSS(t, root, "a.scss")

	stdout, _, err := runCommand(t, newLintCmd(), "--exe", exe)
	if err == nil {
		t.Fatal("expected a tool failure error")
	}
	if !strings.Contains(stdout, "undefined method for nil") {
		t.Errorf("expected stderr of the tool in output, got %q", stdout)
	}
}

func TestLintCommandUsesDiscoveredConfig(t *testing.T) {
	root := useWorkspace(t)
	writeSCSS(t, root, "a.scss")
	cfgFile := filepath.Join(root, ".scss-lint.yml")
	if err := os.WriteFile(cfgFile, []byte("linters: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	saveSettings(t, root, settings.Settings{PluginEnabled: true, ScssLintExecutable: writeStub(t, stubScssLint)})

	ws, err := openWorkspace(newLintCmd(), workspaceOptions{})
	if err != nil {
		t.Fatalf("openWorkspace: %v", err)
	}
	defer ws.Close()
	stored, err := ws.loadSettings()
	if err != nil {
		t.Fatal(err)
	}
	ls, err := resolveLintSettings(ws, stored, lintOverrides{})
	if err != nil {
		t.Fatalf("resolveLintSettings: %v", err)
	}
	if ls.ConfigPath() != cfgFile {
		t.Errorf("config = %q, want %q", ls.ConfigPath(), cfgFile)
	}

	ls, err = resolveLintSettings(ws, stored, lintOverrides{config: "missing.yml", configSet: true})
	if err == nil {
		t.Errorf("expected explicit missing config to fail, got %+v", ls)
	}
}

func TestVersionCommand(t *testing.T) {
	useWorkspace(t)
	exe := writeStub(t, stubScssLint)

	stdout, _, err := runCommand(t, newVersionCmd(), "--exe", exe)
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.Contains(stdout, "scss-lint 0.59.0") || !strings.Contains(stdout, exe) {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestToolsListFindsStubOnPath(t *testing.T) {
	useWorkspace(t)
	exe := writeStub(t, stubScssLint)
	t.Setenv("PATH", filepath.Dir(exe))

	stdout, _, err := runCommand(t, newToolsListCmd())
	if err != nil {
		t.Fatalf("tools list returned error: %v", err)
	}
	if !strings.Contains(stdout, exe) || !strings.Contains(stdout, "scss-lint 0.59.0") {
		t.Errorf("expected stub in listing, got %q", stdout)
	}
}

func TestSettingsSetWritesOnlyWhenChanged(t *testing.T) {
	root := useWorkspace(t)
	exe := writeStub(t, stubScssLint)

	stdout, _, err := runCommand(t, newSettingsSetCmd(), "--exe", exe, "--warnings")
	if err != nil {
		t.Fatalf("settings set returned error: %v", err)
	}
	if !strings.Contains(stdout, "saved") {
		t.Errorf("expected save message, got %q", stdout)
	}

	got, err := settings.NewStore(filepath.Join(root, ".scsslint", "settings.yaml")).Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.ScssLintExecutable != exe || !got.TreatAllIssuesAsWarnings || !got.PluginEnabled {
		t.Errorf("unexpected stored settings %+v", got)
	}

	stdout, _, err = runCommand(t, newSettingsSetCmd(), "--exe", exe)
	if err != nil {
		t.Fatalf("settings set returned error: %v", err)
	}
	if !strings.Contains(stdout, "settings unchanged") {
		t.Errorf("expected unchanged message, got %q", stdout)
	}
}

func TestSettingsSetWarnsOnInvalidPath(t *testing.T) {
	useWorkspace(t)

	_, stderr, err := runCommand(t, newSettingsSetCmd(), "--exe", "/nonexistent/scss-lint")
	if err != nil {
		t.Fatalf("settings set returned error: %v", err)
	}
	if !strings.Contains(stderr, "Path to scss-lint exe is invalid") {
		t.Errorf("expected field warning, got %q", stderr)
	}
}

func TestSettingsValidate(t *testing.T) {
	root := useWorkspace(t)
	exe := writeStub(t, stubScssLint)
	saveSettings(t, root, settings.Settings{PluginEnabled: true, ScssLintExecutable: exe})

	stdout, _, err := runCommand(t, newSettingsValidateCmd())
	if err != nil {
		t.Fatalf("settings validate returned error: %v", err)
	}
	if !strings.Contains(stdout, "VALID") || !strings.Contains(stdout, "scss-lint 0.59.0") {
		t.Errorf("unexpected output %q", stdout)
	}

	saveSettings(t, root, settings.Settings{PluginEnabled: true, ScssLintExecutable: "/nonexistent"})
	stdout, _, err = runCommand(t, newSettingsValidateCmd())
	if err == nil {
		t.Fatal("expected invalid settings to fail")
	}
	if !strings.Contains(stdout, "Path to scss-lint exe is invalid") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDoctorCommandJSON(t *testing.T) {
	root := useWorkspace(t)
	outputJSON = true
	exe := writeStub(t, stubScssLint)
	saveSettings(t, root, settings.Settings{PluginEnabled: true, ScssLintExecutable: exe})

	stdout, _, err := runCommand(t, newDoctorCmd())
	if err != nil {
		t.Fatalf("doctor returned error: %v", err)
	}
	var checks []healthCheck
	if err := json.Unmarshal([]byte(stdout), &checks); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	byName := map[string]healthCheck{}
	for _, c := range checks {
		byName[c.Name] = c
	}
	for _, name := range []string{"Config", "Settings", "Executable", "Lint config", "Version"} {
		c, ok := byName[name]
		if !ok {
			t.Errorf("missing check %s", name)
			continue
		}
		if c.Status != "ok" {
			t.Errorf("%s: status=%q summary=%q", name, c.Status, c.Summary)
		}
	}
}

func TestConfigShowPrintsDefaults(t *testing.T) {
	useWorkspace(t)

	stdout, _, err := runCommand(t, newConfigShowCmd())
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(stdout, "timeout_s: 30") || !strings.Contains(stdout, ".scss-lint.yml") {
		t.Errorf("unexpected config output %q", stdout)
	}
}
