package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes a single external command, blocking until it exits.
// The install dispatcher delegates all process spawning to it so tests
// can substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ShellRunner runs commands on the local host, wiring their output to
// the process's stdout/stderr.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// CommandError reports a failed external command.
type CommandError struct {
	// Command is the full invocation that failed.
	Command string

	// Platform is the manifest platform key being installed.
	Platform string

	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed for platform %s: %v", e.Command, e.Platform, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
