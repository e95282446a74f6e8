// Package codesign signs embedded bundles through xcrun.
package codesign

import (
	"context"
	"time"

	"github.com/Cyclone1070/fwembed/internal/config"
	"github.com/Cyclone1070/fwembed/internal/ctxlog"
	"github.com/Cyclone1070/fwembed/internal/tool/service/executor"
)

type commandExecutor interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

// Signer runs codesign against a bundle.
type Signer struct {
	exec   commandExecutor
	config *config.Config
}

func NewSigner(exec commandExecutor, cfg *config.Config) *Signer {
	if exec == nil {
		panic("exec is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Signer{exec: exec, config: cfg}
}

// Command returns the argument vector Sign would run.
func (s *Signer) Command(path, identity string, flags []string) []string {
	cmd := []string{s.config.Tools.Xcrun, "codesign", "--force", "--sign", identity}
	if s.config.Embed.PreserveMetadata != "" {
		cmd = append(cmd, "--preserve-metadata="+s.config.Embed.PreserveMetadata)
	}
	cmd = append(cmd, flags...)
	return append(cmd, path)
}

// Sign replaces any existing signature on path with one made by identity.
// A non-zero exit is reported as *executor.CommandFailedError.
func (s *Signer) Sign(ctx context.Context, path, identity string, flags []string) error {
	cmd := s.Command(path, identity, flags)
	timeout := time.Duration(s.config.Tools.CommandTimeoutSeconds) * time.Second

	res, err := s.exec.RunWithTimeout(ctx, cmd, "", nil, timeout)
	if err := executor.Check(res, err); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("signed", "path", path, "identity", identity, "duration", res.Duration)
	return nil
}
