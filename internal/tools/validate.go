package tools

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"scsslint/internal/paths"
)

// ValidateExecutable reports whether path names an existing regular file the
// current user may execute. The empty path is invalid.
func ValidateExecutable(path string) bool {
	return CheckExecutable(path) == nil
}

// ValidateConfig reports whether path names an existing readable regular
// file. The empty path is valid and means "discover the config".
func ValidateConfig(path string) bool {
	return CheckConfig(path) == nil
}

// ValidateExecutableIn is ValidateExecutable with relative paths joined to base.
func ValidateExecutableIn(base, path string) bool {
	return CheckExecutable(resolve(base, path)) == nil
}

// ValidateConfigIn is ValidateConfig with relative paths joined to base.
func ValidateConfigIn(base, path string) bool {
	return CheckConfig(resolve(base, path)) == nil
}

// CheckExecutable is the detailed form of ValidateExecutable. A non-nil
// result is always a *ValidationError.
func CheckExecutable(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return &ValidationError{Field: FieldExecutable, Path: path, Reason: ErrEmptyExecutable}
	}
	resolved := paths.ExpandHome(trimmed)
	info, err := os.Stat(resolved)
	if err != nil {
		return &ValidationError{Field: FieldExecutable, Path: path, Reason: statReason(err)}
	}
	if !info.Mode().IsRegular() {
		return &ValidationError{Field: FieldExecutable, Path: path, Reason: ErrNotRegular}
	}
	if !isExecutable(resolved, info) {
		return &ValidationError{Field: FieldExecutable, Path: path, Reason: ErrNotExecutable}
	}
	return nil
}

// CheckConfig is the detailed form of ValidateConfig. A non-nil result is
// always a *ValidationError.
func CheckConfig(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	resolved := paths.ExpandHome(trimmed)
	info, err := os.Stat(resolved)
	if err != nil {
		return &ValidationError{Field: FieldConfig, Path: path, Reason: statReason(err)}
	}
	if !info.Mode().IsRegular() {
		return &ValidationError{Field: FieldConfig, Path: path, Reason: ErrNotRegular}
	}
	f, err := os.Open(resolved)
	if err != nil {
		return &ValidationError{Field: FieldConfig, Path: path, Reason: ErrUnreadable}
	}
	_ = f.Close()
	return nil
}

// CheckExecutableIn is CheckExecutable with relative paths joined to base.
func CheckExecutableIn(base, path string) error {
	if err := CheckExecutable(resolve(base, path)); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return err
	}
	return nil
}

// CheckConfigIn is CheckConfig with relative paths joined to base.
func CheckConfigIn(base, path string) error {
	if err := CheckConfig(resolve(base, path)); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return err
	}
	return nil
}

func resolve(base, path string) string {
	if strings.TrimSpace(path) == "" || base == "" {
		return path
	}
	return paths.ResolveIn(base, path)
}

func statReason(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrUnreadable
	default:
		return err
	}
}
