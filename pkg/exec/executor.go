// Package exec abstracts external command invocation.
//
// Every call to the 1Password CLI goes through a CommandExecutor so that
// tests can substitute canned responses instead of spawning processes.
package exec

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandExecutor runs an external command and captures its output.
//
// Implementations must be safe for concurrent use. The returned stdout and
// stderr are the complete captured streams; err is non-nil when the command
// could not be started or exited non-zero.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor spawns actual processes via os/exec. It is the
// production implementation behind every provider.
type RealCommandExecutor struct{}

// Execute runs name with args and captures both output streams.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor returns the production executor used when no executor is
// injected.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}
