package tools

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DetectOptions configures Detect.
type DetectOptions struct {
	Invoker Invoker
	Locator *Locator
	// WorkingDirectory is used when querying each candidate's version.
	WorkingDirectory string
	Minimum          string
	Timeout          time.Duration
	// Concurrency bounds parallel version queries; values < 1 mean 1.
	Concurrency int
	// GOOS selects install hints when nothing is found.
	GOOS string
	// Manifest, when set, serves versions recorded by earlier runs for
	// executables that have not changed, and records new probes.
	Manifest *ManifestStore
}

// Detect reports the status of every executable candidate. When no candidate
// exists a single unsatisfied Status carrying install hints is returned.
func Detect(ctx context.Context, opts DetectOptions) []Status {
	def := ScssLint.WithMinimum(opts.Minimum)
	candidates := opts.Locator.FindExecutableCandidates()
	if len(candidates) == 0 {
		return []Status{{
			Tool:    def.Name,
			Minimum: def.MinimumVersion,
			Error:   fmt.Sprintf("%s not found", def.Name),
			Notes:   InstallHints(opts.GOOS),
		}}
	}

	statuses := make([]Status, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i, path := range candidates {
		g.Go(func() error {
			statuses[i] = probeRecorded(gctx, opts, def, path)
			return nil
		})
	}
	_ = g.Wait()
	if opts.Manifest != nil {
		// An unwritable manifest only costs a re-probe next time.
		_ = opts.Manifest.Save()
	}
	return statuses
}

func probeRecorded(ctx context.Context, opts DetectOptions, def ToolDefinition, path string) Status {
	if opts.Manifest != nil && CheckExecutable(path) == nil {
		if version, ok := opts.Manifest.Lookup(path); ok {
			return versionStatus(Status{Tool: def.Name, Path: path, Minimum: def.MinimumVersion, Valid: true, Recorded: true}, def, version)
		}
	}
	status := ProbeCandidate(ctx, opts.Invoker, def, NewLintSettings(path, opts.WorkingDirectory, "", false), opts.Timeout)
	if opts.Manifest != nil && status.Version != "" {
		opts.Manifest.Record(path, status.Version)
	}
	return status
}

// ProbeCandidate validates s's executable and queries its version.
func ProbeCandidate(ctx context.Context, invoker Invoker, def ToolDefinition, s LintSettings, timeout time.Duration) Status {
	status := Status{Tool: def.Name, Path: s.ExecutablePath(), Minimum: def.MinimumVersion}
	if err := CheckExecutable(s.ExecutablePath()); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Valid = true

	version, err := readVersion(ctx, invoker, def, s, timeout)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	return versionStatus(status, def, version)
}

func versionStatus(status Status, def ToolDefinition, version string) Status {
	status.Version = version
	status.Satisfied = MeetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", VersionNumber(version), def.MinimumVersion)
	}
	return status
}
