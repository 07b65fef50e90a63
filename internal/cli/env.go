package cli

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"scsslint/internal/config"
	"scsslint/internal/logx"
	"scsslint/internal/paths"
	"scsslint/internal/runner"
	"scsslint/internal/settings"
	"scsslint/internal/tools"
)

// workspace bundles everything a command needs to talk to scss-lint for one
// project directory. configErr is set when the config file failed to load
// and defaults are in use instead (workspaceOptions.tolerateConfigErr).
type workspace struct {
	paths      paths.ProjectPaths
	cfg        config.Config
	configPath string
	configErr  error
	logger     *slog.Logger
	closer     io.Closer

	invoker  *runner.Invoker
	locator  *tools.Locator
	versions *tools.VersionCache
	store    *settings.Store
}

type workspaceOptions struct {
	// logFile also writes JSON records under the workspace logs directory.
	logFile bool
	// tolerateConfigErr falls back to config.Default when the config file
	// is broken instead of failing.
	tolerateConfigErr bool
}

func openWorkspace(cmd *cobra.Command, opts workspaceOptions) (*workspace, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return nil, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	cfg, cfgPath, err := config.LoadFor(pp.Root)
	if err != nil {
		if !opts.tolerateConfigErr {
			return nil, err
		}
		cfg = config.Default()
	}

	ws := &workspace{paths: pp, cfg: cfg, configPath: cfgPath, configErr: err}

	logOpts := logx.Options{Verbose: verbose, Stderr: cmd.ErrOrStderr()}
	if opts.logFile {
		logger, closer, err := logx.New(pp, logOpts)
		if err != nil {
			return nil, err
		}
		ws.logger, ws.closer = logger, closer
	} else {
		ws.logger = logx.NewStderr(logOpts)
	}

	runOpts := runner.OptionsFromConfig(cfg)
	runOpts.Logger = ws.logger
	ws.invoker = runner.NewInvoker(runOpts)
	ws.locator = tools.NewLocator(tools.WithLocatorConfig(cfg.Locator))
	ws.versions = tools.NewVersionCache(ws.invoker,
		tools.WithVersionTimeout(cfg.VersionTimeout()),
		tools.WithVersionLogger(ws.logger),
		tools.WithDefinition(tools.ScssLint.WithMinimum(cfg.Lint.MinimumVersion)),
	)
	ws.store = settings.NewStore(pp.SettingsFile)
	return ws, nil
}

func (ws *workspace) Close() {
	if ws.closer != nil {
		_ = ws.closer.Close()
	}
}

func (ws *workspace) loadSettings() (settings.Settings, error) {
	s, err := ws.store.Load()
	if err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

func (ws *workspace) newService(initial settings.Settings) *settings.Service {
	return settings.NewService(ws.paths.Root, initial, ws.versions, ws.locator, settings.WithLogger(ws.logger))
}

func (ws *workspace) detectOptions() tools.DetectOptions {
	return tools.DetectOptions{
		Invoker:          ws.invoker,
		Locator:          ws.locator,
		WorkingDirectory: ws.paths.Root,
		Minimum:          ws.cfg.Lint.MinimumVersion,
		Timeout:          ws.cfg.VersionTimeout(),
		Concurrency:      ws.cfg.Lint.Concurrency,
		GOOS:             runtime.GOOS,
	}
}
