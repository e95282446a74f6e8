package executor

import (
	"errors"
	"fmt"
	"strings"
)

// CommandError is returned when a command cannot be started or waited on.
type CommandError struct {
	Cmd   string
	Stage string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Stage, e.Cmd, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// CommandFailedError is returned when a command ran but did not succeed.
type CommandFailedError struct {
	Command  []string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *CommandFailedError) Error() string {
	name := strings.Join(e.Command, " ")
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return fmt.Sprintf("%s exited with status %d: %s", name, e.ExitCode, msg)
	}
	return fmt.Sprintf("%s failed: %v", name, e.Cause)
}
func (e *CommandFailedError) Unwrap() error { return e.Cause }

// Check converts the outcome of Run or RunWithTimeout into a single error.
// Start failures are returned as is; anything else becomes a CommandFailedError.
func Check(res *Result, err error) error {
	if err == nil {
		return nil
	}
	if res == nil {
		return err
	}
	return &CommandFailedError{
		Command:  res.Command,
		ExitCode: res.ExitCode,
		Stderr:   res.Stderr,
		Cause:    err,
	}
}
