// Package main provides the fwembed command, run from an Xcode build phase to
// copy a prebuilt framework into the product and sign it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Cyclone1070/fwembed/internal/config"
	"github.com/Cyclone1070/fwembed/internal/tool/service/codesign"
	"github.com/Cyclone1070/fwembed/internal/tool/service/executor"
	"github.com/Cyclone1070/fwembed/internal/tool/service/fs"
	"github.com/Cyclone1070/fwembed/internal/tool/service/lipo"
	"github.com/Cyclone1070/fwembed/internal/tool/service/macho"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type archInspector interface {
	Executable(bundlePath string) (string, error)
	Architectures(bundlePath string) ([]string, error)
}

type signer interface {
	Sign(ctx context.Context, path, identity string, flags []string) error
}

type stripper interface {
	Remove(ctx context.Context, binary string, archs []string) error
}

// Tools are the collaborators that inspect and rewrite binaries.
type Tools struct {
	Inspector archInspector
	Signer    signer
	Stripper  stripper
}

// Dependencies holds the components required to run the command.
type Dependencies struct {
	FS           *fs.FileSystem
	ConfigLoader *config.Loader
	// Lookup resolves build settings, os.LookupEnv in production.
	Lookup   func(string) (string, bool)
	NewTools func(cfg *config.Config, fs *fs.FileSystem) Tools
	Stdout   io.Writer
	Stderr   io.Writer
}

func createRealTools(cfg *config.Config, fileSystem *fs.FileSystem) Tools {
	commandExecutor := executor.NewOSCommandExecutor(cfg)
	return Tools{
		Inspector: macho.NewInspector(fileSystem),
		Signer:    codesign.NewSigner(commandExecutor, cfg),
		Stripper:  lipo.NewStripper(commandExecutor, cfg),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	deps := Dependencies{
		FS:           fs.NewOSFileSystem(),
		ConfigLoader: config.NewLoader(),
		Lookup:       os.LookupEnv,
		NewTools:     createRealTools,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}

	code := run(ctx, os.Args[1:], deps)
	stop()
	os.Exit(code)
}

// run executes the command line and maps the outcome to an exit status.
// Failures are printed as "error: ..." lines, which Xcode reports as build errors.
func run(ctx context.Context, args []string, deps Dependencies) int {
	a := &app{deps: deps}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(deps.Stderr, "error: %v\n", err)

	var usage *usageError
	if errors.As(err, &usage) {
		if usage.cmd != nil {
			fmt.Fprintf(deps.Stderr, "Run '%s --help' for usage.\n", usage.cmd.CommandPath())
		}
		return exitUsage
	}
	// cobra reports unknown subcommands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitFailure
}
