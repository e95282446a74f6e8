// Package lipo removes architecture slices from universal binaries.
package lipo

import (
	"context"
	"errors"
	"time"

	"github.com/Cyclone1070/fwembed/internal/config"
	"github.com/Cyclone1070/fwembed/internal/ctxlog"
	"github.com/Cyclone1070/fwembed/internal/tool/service/executor"
)

// ErrNoArchitectures is returned when Remove is asked to strip nothing.
var ErrNoArchitectures = errors.New("no architectures to remove")

type commandExecutor interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

type Stripper struct {
	exec   commandExecutor
	config *config.Config
}

func NewStripper(exec commandExecutor, cfg *config.Config) *Stripper {
	if exec == nil {
		panic("exec is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Stripper{exec: exec, config: cfg}
}

// Command returns the argument vector Remove would run. The binary is rewritten in place.
func (s *Stripper) Command(binary string, archs []string) []string {
	cmd := []string{s.config.Tools.Xcrun, "lipo"}
	for _, a := range archs {
		cmd = append(cmd, "-remove", a)
	}
	return append(cmd, "-output", binary, binary)
}

// Remove deletes the named slices from binary.
func (s *Stripper) Remove(ctx context.Context, binary string, archs []string) error {
	if len(archs) == 0 {
		return ErrNoArchitectures
	}
	timeout := time.Duration(s.config.Tools.CommandTimeoutSeconds) * time.Second

	res, err := s.exec.RunWithTimeout(ctx, s.Command(binary, archs), "", nil, timeout)
	if err := executor.Check(res, err); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("stripped architectures", "binary", binary, "removed", archs)
	return nil
}
