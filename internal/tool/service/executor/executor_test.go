package executor

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/fwembed/internal/config"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix commands only")
	}
	cfg := config.DefaultConfig()
	exec := NewOSCommandExecutor(cfg)

	t.Run("SimpleCommand", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"echo", "hello"}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "hello" {
			t.Errorf("expected stdout 'hello', got %q", res.Stdout)
		}
		if res.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", res.ExitCode)
		}
		if len(res.Command) != 2 || res.Command[0] != "echo" {
			t.Errorf("expected command to be recorded, got %v", res.Command)
		}
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		_, err := exec.Run(context.Background(), []string{}, "", nil)
		if err != os.ErrInvalid {
			t.Errorf("expected os.ErrInvalid, got %v", err)
		}
	})

	t.Run("MissingBinary", func(t *testing.T) {
		_, err := exec.Run(context.Background(), []string{"/nonexistent/codesign"}, "", nil)
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("expected CommandError, got %v", err)
		}
		if cmdErr.Stage != "start" {
			t.Errorf("expected stage 'start', got %q", cmdErr.Stage)
		}
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"false"}, "", nil)
		if err == nil {
			t.Error("expected error for non-zero exit")
		}
		if res.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", res.ExitCode)
		}
	})

	t.Run("Stderr", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"sh", "-c", "echo error >&2"}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stderr) != "error" {
			t.Errorf("expected stderr 'error', got %q", res.Stderr)
		}
	})

	t.Run("WorkingDirAndEnv", func(t *testing.T) {
		dir := t.TempDir()
		res, err := exec.Run(context.Background(), []string{"sh", "-c", "pwd; echo $IDENTITY"}, dir, []string{"IDENTITY=ABC123"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected two lines, got %q", res.Stdout)
		}
		if !strings.HasSuffix(lines[0], strings.TrimPrefix(dir, "/private")) {
			t.Errorf("expected working dir %q, got %q", dir, lines[0])
		}
		if lines[1] != "ABC123" {
			t.Errorf("expected env value, got %q", lines[1])
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := exec.Run(ctx, []string{"sleep", "10"}, "", nil)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("LargeOutput", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Tools.MaxCommandOutputSize = 10
		exec := NewOSCommandExecutor(cfg)

		res, err := exec.Run(context.Background(), []string{"echo", "123456789012345"}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Truncated {
			t.Error("expected output to be truncated")
		}
		if len(res.Stdout) > 10 {
			t.Errorf("expected stdout length <= 10, got %d", len(res.Stdout))
		}
	})
}

func TestRunWithTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix commands only")
	}
	cfg := config.DefaultConfig()
	cfg.Tools.GracefulShutdownMs = 100
	exec := NewOSCommandExecutor(cfg)

	t.Run("CompletesBeforeTimeout", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"echo", "hi"}, "", nil, 1*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "hi" {
			t.Errorf("expected stdout 'hi', got %q", res.Stdout)
		}
		if res.Duration <= 0 {
			t.Errorf("expected positive duration, got %v", res.Duration)
		}
	})

	t.Run("TimeoutKillsProcess", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"sleep", "10"}, "", nil, 100*time.Millisecond)
		if err != ErrTimeout {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if res.ExitCode != -1 {
			t.Errorf("expected exit code -1, got %d", res.ExitCode)
		}
	})

	t.Run("OutputCollectedOnTimeout", func(t *testing.T) {
		cmd := []string{"sh", "-c", "echo starting; sleep 10"}
		res, err := exec.RunWithTimeout(context.Background(), cmd, "", nil, 500*time.Millisecond)
		if err != ErrTimeout {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "starting" {
			t.Errorf("expected stdout 'starting', got %q", res.Stdout)
		}
	})
}

func TestCollector(t *testing.T) {
	t.Run("UnderLimit", func(t *testing.T) {
		c := newCollector(10, 5)
		n, err := c.Write([]byte("abc"))
		if err != nil || n != 3 {
			t.Errorf("unexpected write result: %v, %d", err, n)
		}
		if c.String() != "abc" || c.Truncated() {
			t.Errorf("unexpected collector state: %q, %v", c.String(), c.Truncated())
		}
	})

	t.Run("OverLimit", func(t *testing.T) {
		c := newCollector(5, 5)
		_, _ = c.Write([]byte("abcdef"))
		if c.String() != "abcde" || !c.Truncated() {
			t.Errorf("unexpected collector state: %q, %v", c.String(), c.Truncated())
		}
	})

	t.Run("BinaryDetection", func(t *testing.T) {
		c := newCollector(10, 5)
		_, _ = c.Write([]byte{'a', 0, 'b'})
		if c.String() != "[Binary Content]" || !c.Truncated() {
			t.Errorf("unexpected collector state: %q, %v", c.String(), c.Truncated())
		}
	})
}

func TestCheck(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		if err := Check(&Result{}, nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("StartFailurePassesThrough", func(t *testing.T) {
		startErr := &CommandError{Cmd: "xcrun", Stage: "start", Cause: os.ErrNotExist}
		err := Check(nil, startErr)
		if err != startErr {
			t.Errorf("expected start error unchanged, got %v", err)
		}
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		cause := errors.New("exit status 1")
		res := &Result{Command: []string{"xcrun", "codesign"}, ExitCode: 1, Stderr: "no identity found\n"}
		err := Check(res, cause)

		var failed *CommandFailedError
		if !errors.As(err, &failed) {
			t.Fatalf("expected CommandFailedError, got %v", err)
		}
		if failed.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", failed.ExitCode)
		}
		if !errors.Is(err, cause) {
			t.Error("expected cause to be unwrappable")
		}
		if err.Error() != "xcrun codesign exited with status 1: no identity found" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("TimeoutWithoutStderr", func(t *testing.T) {
		err := Check(&Result{Command: []string{"xcrun", "lipo"}, ExitCode: -1}, ErrTimeout)
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if err.Error() != "xcrun lipo failed: command timeout" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}
