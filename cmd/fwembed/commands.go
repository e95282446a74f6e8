package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/fwembed/internal/config"
	"github.com/Cyclone1070/fwembed/internal/ctxlog"
	"github.com/Cyclone1070/fwembed/internal/tool/embed"
	"github.com/Cyclone1070/fwembed/internal/tool/service/git"
	"github.com/Cyclone1070/fwembed/internal/ui"
	"github.com/Cyclone1070/fwembed/internal/xcodebuild"
	"github.com/spf13/cobra"
)

// errMissingPath is reported when embed or plan is run without a framework.
var errMissingPath = errors.New("the path to the framework is missing")

// usageError marks a failure caused by how the command was invoked.
type usageError struct {
	cmd   *cobra.Command
	cause error
}

func (e *usageError) Error() string { return e.cause.Error() }
func (e *usageError) Unwrap() error { return e.cause }

// incompleteEnvironmentError lists the build settings that were not provided.
type incompleteEnvironmentError struct {
	Missing []string
}

func (e *incompleteEnvironmentError) Error() string {
	if len(e.Missing) == 0 {
		return "the build environment is incomplete"
	}
	return "the build environment is incomplete, missing " + strings.Join(e.Missing, ", ")
}

// app carries flag values and loaded state between cobra hooks.
type app struct {
	deps Dependencies

	settingsFile string
	configFile   string
	logFormat    string
	verbose      bool

	config *config.Config
	logger *slog.Logger
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fwembed",
		Short: "Embed prebuilt frameworks into an Xcode product",
		Long: `fwembed copies a prebuilt framework and its debug symbols into the frameworks
folder of the product being built, then signs the copy. It reads the build
settings Xcode exports to run script phases.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{cmd: cmd, cause: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.settingsFile, "settings-file", "", "Read build settings from a file (xcodebuild -showBuildSettings format) over the environment")
	flags.StringVar(&a.configFile, "config", "", "Configuration file (default ~/.config/fwembed/config.json)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newEmbedCommand(a), newPlanCommand(a), newEnvCommand(a))
	return root
}

func newEmbedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "embed <path>",
		Short: "Copy, and sign if required, a framework into the product",
		Long: `Embed copies the framework at path, relative to the working directory unless
absolute, into the frameworks folder of the product. A sibling .dSYM bundle is
copied into DWARF_DSYM_FOLDER_PATH. The copy is signed when both
CODE_SIGNING_REQUIRED and CODE_SIGNING_ALLOWED are set.`,
		Args: frameworkPathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := a.environment()
			if err != nil {
				return err
			}
			embedder, err := a.embedder(ctx, env)
			if err != nil {
				return err
			}
			_, err = embedder.Embed(ctx, env, args[0])
			return err
		},
	}
}

func newPlanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <path>",
		Short: "Show what embed would do without changing anything",
		Args:  frameworkPathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := a.environment()
			if err != nil {
				return err
			}
			embedder, err := a.embedder(ctx, env)
			if err != nil {
				return err
			}
			p, err := embedder.Plan(ctx, env, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderPlan(p))
			return nil
		},
	}
}

func newEnvCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the build settings fwembed sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				var incomplete *incompleteEnvironmentError
				if errors.As(err, &incomplete) && len(incomplete.Missing) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMissingKeys(incomplete.Missing))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderEnvironment(env))
			return nil
		},
	}
}

// frameworkPathArg requires exactly one positional path.
func frameworkPathArg(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0 || strings.TrimSpace(args[0]) == "":
		return &usageError{cmd: cmd, cause: errMissingPath}
	case len(args) > 1:
		return &usageError{cmd: cmd, cause: fmt.Errorf("expected one framework path, got %d", len(args))}
	}
	return nil
}

// setup loads configuration and installs the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.configFile != "" {
		a.config, err = a.deps.ConfigLoader.LoadFile(a.configFile)
	} else {
		a.config, err = a.deps.ConfigLoader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	format := a.config.Log.Format
	if a.logFormat != "" {
		if a.logFormat != "text" && a.logFormat != "json" {
			return &usageError{cmd: cmd, cause: fmt.Errorf("unknown log format %q", a.logFormat)}
		}
		format = a.logFormat
	}
	level := a.config.Log.Level
	if a.verbose {
		level = "debug"
	}

	a.logger = ctxlog.New(a.deps.Stderr, format, level)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), a.logger))
	return nil
}

// environment resolves the build settings, overlaying --settings-file on the lookup.
func (a *app) environment() (*xcodebuild.Environment, error) {
	lookup := a.deps.Lookup
	if a.settingsFile != "" {
		values, err := xcodebuild.ParseSettingsFile(a.deps.FS, a.settingsFile)
		if err != nil {
			return nil, err
		}
		lookup = xcodebuild.Overlay(values, lookup)
	}

	env, ok := xcodebuild.Lookup(lookup)
	if !ok {
		return nil, &incompleteEnvironmentError{Missing: xcodebuild.MissingKeys(lookup)}
	}
	return env, nil
}

func (a *app) embedder(ctx context.Context, env *xcodebuild.Environment) (*embed.Embedder, error) {
	patterns := append([]string(nil), a.config.Embed.CopyExclude...)
	if root := env.SrcRoot(); root != "" {
		extra, err := git.LoadIgnoreFile(a.deps.FS, root)
		if err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			ctxlog.FromContext(ctx).Debug("loaded copy exclusions", "file", git.IgnoreFile, "patterns", len(extra))
		}
		patterns = append(patterns, extra...)
	}

	tools := a.deps.NewTools(a.config, a.deps.FS)
	return embed.NewEmbedder(
		a.deps.FS,
		tools.Inspector,
		tools.Signer,
		tools.Stripper,
		git.NewIgnoreMatcher(patterns),
		a.config,
	), nil
}
