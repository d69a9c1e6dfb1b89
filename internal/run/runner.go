package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/internal/metrics"
	"github.com/systmms/opsync/internal/resolve"
	"github.com/systmms/opsync/internal/template"
	"github.com/systmms/opsync/pkg/provider"
)

// Runner materializes targets one by one, in configured order. A
// failing target never stops its neighbors; only a provider that has
// become unusable ends the run early, because every remaining target
// would fail the same way.
type Runner struct {
	cfg      *config.Config
	resolver *resolve.Resolver
	logger   *logging.Logger
}

// Result is the outcome of one target.
type Result struct {
	Target  config.Target
	Err     error
	Skipped bool
}

// NewRunner creates a runner writing through the given resolver.
func NewRunner(cfg *config.Config, resolver *resolve.Resolver) *Runner {
	return &Runner{
		cfg:      cfg,
		resolver: resolver,
		logger:   cfg.Logger,
	}
}

// Run processes every target and returns one Result per target, in the
// same order. After a run-fatal provider error the remaining targets
// are reported as skipped without being attempted.
func (r *Runner) Run(ctx context.Context, targets []config.Target) []Result {
	results := make([]Result, 0, len(targets))
	aborted := false

	for _, target := range targets {
		if aborted {
			r.logger.Warn("%s: skipped", target.Name)
			metrics.RecordTarget(target.Type, "skipped")
			results = append(results, Result{Target: target, Skipped: true})
			continue
		}

		err := r.processTarget(ctx, target)
		if err != nil {
			r.logger.Error("%s: %s: %s", target.Name, ErrorKind(err), err)
			metrics.RecordTarget(target.Type, "failed")
			results = append(results, Result{Target: target, Err: err})

			if provider.IsUnavailable(err) {
				r.logger.Error("Provider is unavailable, skipping remaining targets")
				aborted = true
			}
			continue
		}

		r.logger.Success("%s → %s", target.Name, target.Destination)
		metrics.RecordTarget(target.Type, "success")
		results = append(results, Result{Target: target})
	}

	return results
}

func (r *Runner) processTarget(ctx context.Context, target config.Target) error {
	if target.IsTemplate() {
		return r.processTemplate(ctx, target)
	}
	return r.processFile(ctx, target)
}

// processFile copies a stored document to the destination, byte for
// byte. The item must be known before any provider work starts.
func (r *Runner) processFile(ctx context.Context, target config.Target) error {
	if target.Item == "" {
		return &resolve.MissingItemError{Target: target.Name}
	}

	data, err := r.resolver.LookupDocument(ctx, provider.DocumentReference{
		Account: target.Account,
		Vault:   target.Vault,
		Item:    target.Item,
	})
	if err != nil {
		return err
	}

	return r.writeDestination(target, data)
}

// processTemplate renders the source template and writes the result.
// Render returns either the complete output or an error, so a broken
// template never leaves a partial destination behind.
func (r *Runner) processTemplate(ctx context.Context, target config.Target) error {
	sourcePath, err := ExpandPath(target.Source)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read template source '%s': %w", target.Source, err)
	}

	rendered, err := template.Render(string(source), r.resolver.ResolveFor(ctx, target))
	if err != nil {
		return err
	}

	return r.writeDestination(target, []byte(rendered))
}

// writeDestination writes the finished content with the target's mode,
// creating parent directories as needed. Directories are created
// private: the files under them hold credentials.
func (r *Runner) writeDestination(target config.Target, data []byte) error {
	mode, err := target.FileMode()
	if err != nil {
		return err
	}

	dest, err := ExpandPath(target.Destination)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	if err := os.WriteFile(dest, data, mode); err != nil {
		return fmt.Errorf("failed to write '%s': %w", dest, err)
	}

	// WriteFile only applies the mode to new files; an overwritten
	// destination keeps its old permissions unless corrected.
	if err := os.Chmod(dest, mode); err != nil {
		return fmt.Errorf("failed to set mode on '%s': %w", dest, err)
	}

	r.logger.Debug("Wrote %d bytes to %s (mode %04o)", len(data), dest, mode)
	return nil
}

// ExpandPath resolves a leading ~/ against the home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// ErrorKind names the failure class of a target error for reporting.
func ErrorKind(err error) string {
	var parseErr *template.ParseError
	var missingItem *resolve.MissingItemError
	var lookupErr *resolve.LookupError
	var pathErr *os.PathError

	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &parseErr):
		return "parse error"
	case errors.As(err, &missingItem):
		return "missing item"
	case provider.IsUnavailable(err):
		return "provider unavailable"
	case errors.As(err, &lookupErr):
		return "lookup failed"
	case errors.As(err, &pathErr):
		return "io error"
	default:
		return "error"
	}
}

// Failed reports whether any target failed or was skipped.
func Failed(results []Result) bool {
	for _, result := range results {
		if result.Err != nil || result.Skipped {
			return true
		}
	}
	return false
}
