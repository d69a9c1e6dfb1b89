// Package permissions audits the file modes of materialized
// destinations. Files written by sync carry tight modes; this checker
// catches destinations that were loosened afterwards by a chmod, a
// restored backup, or a copy through a permissive umask.
package permissions

import (
	"fmt"
	"os"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/internal/run"
)

// Finding reports one destination whose permission bits exceed the
// configured mode.
type Finding struct {
	Target string
	Path   string
	Mode   os.FileMode // actual permission bits
	Want   os.FileMode // configured permission bits
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s is %04o, configured %04o", f.Target, f.Path, uint32(f.Mode), uint32(f.Want))
}

// Checker inspects destination files that already exist on disk.
type Checker struct {
	logger *logging.Logger
}

// NewChecker creates a permission checker.
func NewChecker(logger *logging.Logger) *Checker {
	return &Checker{logger: logger}
}

// Check stats every target's destination and reports the ones whose
// permission bits exceed the configured mode. A destination that does
// not exist yet is fine: sync has not written it. A mode tighter than
// configured is also fine.
func (c *Checker) Check(targets []config.Target) []Finding {
	findings := make([]Finding, 0)

	for _, target := range targets {
		want, err := target.FileMode()
		if err != nil {
			// invalid modes are rejected at load
			continue
		}

		path, err := run.ExpandPath(target.Destination)
		if err != nil {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		if extra := info.Mode().Perm() &^ want.Perm(); extra != 0 {
			c.logger.Debug("Destination %s carries extra permission bits %04o", path, uint32(extra))
			findings = append(findings, Finding{
				Target: target.Name,
				Path:   path,
				Mode:   info.Mode().Perm(),
				Want:   want.Perm(),
			})
		}
	}

	return findings
}
