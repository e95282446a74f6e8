package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/fwembed/internal/config"
	"github.com/Cyclone1070/fwembed/internal/ctxlog"
)

// binarySampleSize is how much output is scanned for NUL bytes.
const binarySampleSize = 8000

// Result represents the outcome of a command execution.
type Result struct {
	Command   []string
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
type OSCommandExecutor struct {
	config *config.Config
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg}
}

// started is a running command with its output being collected.
type started struct {
	cmd         *exec.Cmd
	begin       time.Time
	stdout      *collector
	stderr      *collector
	collectDone chan struct{}
}

func (f *OSCommandExecutor) start(ctx context.Context, command []string, dir string, env []string) (*started, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	ctxlog.FromContext(ctx).Debug("running command", "command", strings.Join(command, " "), "dir", dir)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	maxBytes := int(f.config.Tools.MaxCommandOutputSize)
	s := &started{
		cmd:         cmd,
		begin:       time.Now(),
		stdout:      newCollector(maxBytes, binarySampleSize),
		stderr:      newCollector(maxBytes, binarySampleSize),
		collectDone: make(chan struct{}),
	}

	go func() {
		defer close(s.collectDone)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = io.Copy(s.stdout, stdoutPipe)
		}()
		go func() {
			defer wg.Done()
			_, _ = io.Copy(s.stderr, stderrPipe)
		}()
		wg.Wait()
	}()

	return s, nil
}

func (s *started) result(command []string, err error) *Result {
	<-s.collectDone

	exitCode := 0
	if err != nil {
		exitCode = getExitCode(err)
		if errors.Is(err, ErrTimeout) {
			exitCode = -1
		}
	}

	return &Result{
		Command:   command,
		Stdout:    s.stdout.String(),
		Stderr:    s.stderr.String(),
		ExitCode:  exitCode,
		Truncated: s.stdout.Truncated() || s.stderr.Truncated(),
		Duration:  time.Since(s.begin),
	}
}

// Run executes a command and waits for it, killing it if ctx is cancelled.
// A non-zero exit is returned as an error alongside the populated Result.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	s, err := f.start(ctx, command, dir, env)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		<-s.collectDone
		done <- s.cmd.Wait()
	}()

	var execErr error
	select {
	case execErr = <-done:
	case <-ctx.Done():
		_ = s.cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	}

	return s.result(command, execErr), execErr
}

// RunWithTimeout executes a command with a timeout and graceful shutdown:
// on timeout the process is interrupted, then killed after the configured grace period.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	s, err := f.start(ctx, command, dir, env)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		<-s.collectDone
		done <- s.cmd.Wait()
	}()

	var execErr error
	select {
	case execErr = <-done:
	case <-ctx.Done():
		_ = s.cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(time.Duration(f.config.Tools.GracefulShutdownMs) * time.Millisecond):
			_ = s.cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	return s.result(command, execErr), execErr
}

func getExitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
