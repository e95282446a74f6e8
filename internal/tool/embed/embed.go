// Package embed copies a prebuilt framework into the product being built,
// along with its debug symbols, and signs the copy.
package embed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/fwembed/internal/config"
	"github.com/Cyclone1070/fwembed/internal/ctxlog"
	"github.com/Cyclone1070/fwembed/internal/tool/service/macho"
	"github.com/Cyclone1070/fwembed/internal/xcodebuild"
)

const dsymExtension = ".dSYM"

// Embedder runs the embedding steps against one build environment.
type Embedder struct {
	fs        fileSystem
	inspector archInspector
	signer    signer
	stripper  stripper
	excluder  copyExcluder
	config    *config.Config
}

// NewEmbedder creates a new Embedder with injected dependencies.
func NewEmbedder(
	fs fileSystem,
	inspector archInspector,
	signer signer,
	stripper stripper,
	excluder copyExcluder,
	cfg *config.Config,
) *Embedder {
	if fs == nil {
		panic("fs is required")
	}
	if inspector == nil {
		panic("inspector is required")
	}
	if signer == nil {
		panic("signer is required")
	}
	if stripper == nil {
		panic("stripper is required")
	}
	if excluder == nil {
		panic("excluder is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Embedder{
		fs:        fs,
		inspector: inspector,
		signer:    signer,
		stripper:  stripper,
		excluder:  excluder,
		config:    cfg,
	}
}

// Plan computes what Embed would do for path without modifying anything.
// It fails with the same precondition errors Embed does.
func (e *Embedder) Plan(ctx context.Context, env *xcodebuild.Environment, path string) (*Plan, error) {
	if env == nil {
		return nil, ErrEnvironmentRequired
	}
	log := ctxlog.FromContext(ctx)

	source, err := e.absolute(path)
	if err != nil {
		return nil, err
	}
	if !e.fs.Exists(source) {
		return nil, &MissingDependencyError{Path: source}
	}

	name := filepath.Base(source)
	p := &Plan{
		Source:         source,
		FrameworksPath: filepath.Clean(env.FrameworksPath()),
		Action:         env.Action(),
		ValidArchs:     env.ValidArchs(),
	}
	p.Destination = filepath.Join(p.FrameworksPath, name)
	p.InPlace = e.sameLocation(source, p.Destination)

	if err := e.planArchitectures(ctx, p); err != nil {
		return nil, err
	}

	if dsymFolder := env.DwarfDsymFolderPath(); dsymFolder != "" {
		if dsym := source + dsymExtension; e.fs.Exists(dsym) {
			p.DSYMSource = dsym
			p.DSYMDestination = filepath.Join(filepath.Clean(dsymFolder), name+dsymExtension)
			p.DSYMInPlace = e.sameLocation(dsym, p.DSYMDestination)
		}
	}

	p.SigningRequired = env.SigningRequired()
	if p.SigningRequired {
		p.Identity = env.SigningIdentity()
		p.SigningFlags = env.CodeSignFlags()
		p.Sign = p.Identity != ""
		if !p.Sign {
			log.Warn("signing required but no identity is set, skipping", "framework", name)
		}
	}

	return p, nil
}

func (e *Embedder) planArchitectures(ctx context.Context, p *Plan) error {
	log := ctxlog.FromContext(ctx)

	archs, err := e.inspector.Architectures(p.Source)
	if err != nil {
		if len(p.ValidArchs) == 0 {
			// Nothing to check against, so an unreadable binary is not fatal.
			log.Debug("could not read architectures", "path", p.Source, "error", err)
			return nil
		}
		return &UnsupportedArchitectureError{Path: p.Source, ValidArchs: p.ValidArchs, Cause: err}
	}
	p.Architectures = archs

	if len(p.ValidArchs) == 0 {
		p.Supported = archs
		return nil
	}

	p.Supported = macho.Intersect(archs, p.ValidArchs)
	if len(p.Supported) == 0 {
		return &UnsupportedArchitectureError{Path: p.Source, Architectures: archs, ValidArchs: p.ValidArchs}
	}

	if !e.config.Embed.StripUnsupportedArchs || len(archs) < 2 {
		return nil
	}
	if unsupported := macho.Difference(archs, p.ValidArchs); len(unsupported) > 0 {
		exe, err := e.inspector.Executable(p.Source)
		if err != nil {
			return &UnsupportedArchitectureError{Path: p.Source, ValidArchs: p.ValidArchs, Cause: err}
		}
		root, err := e.fs.ResolveLinks(p.Source)
		if err != nil {
			return &UnsupportedArchitectureError{Path: p.Source, ValidArchs: p.ValidArchs, Cause: err}
		}
		rel, err := filepath.Rel(root, exe)
		if err == nil && (rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			err = fmt.Errorf("executable %s is outside the bundle", exe)
		}
		if err != nil {
			return &UnsupportedArchitectureError{Path: p.Source, ValidArchs: p.ValidArchs, Cause: err}
		}
		p.Executable = filepath.Join(p.Destination, rel)
		p.Strip = unsupported
	}
	return nil
}

// Embed copies the framework at path into the frameworks folder of env,
// copies its debug symbols when present, and signs the copy when signing is
// required. Steps run in order and the first failure aborts the rest. Each
// step replaces what a previous run left behind, so a failed run can simply
// be repeated.
//
// The architecture check only applies when VALID_ARCHS is set: with an empty
// list every slice is accepted, since recent toolchains usually export none.
//
// Embed provides no mutual exclusion over the frameworks folder: two
// concurrent calls targeting the same destination have undefined results.
func (e *Embedder) Embed(ctx context.Context, env *xcodebuild.Environment, path string) (*Result, error) {
	log := ctxlog.FromContext(ctx)

	if env != nil && env.ActionFellBack() {
		log.Warn("unknown build action, defaulting to install", "action", env.RawAction())
	}

	p, err := e.Plan(ctx, env, path)
	if err != nil {
		return nil, err
	}

	res := &Result{
		FrameworkPath: p.Destination,
		Architectures: p.Architectures,
	}

	log.Debug("creating frameworks folder", "path", p.FrameworksPath)
	if err := e.fs.CreateFolder(p.FrameworksPath); err != nil {
		return nil, &FrameworksFolderCreationError{Path: p.FrameworksPath, Cause: err}
	}

	if p.InPlace {
		log.Debug("framework already at destination, skipping copy", "path", p.Destination)
	} else {
		log.Debug("copying framework", "from", p.Source, "to", p.Destination)
		if err := e.replace(p.Source, p.Destination); err != nil {
			return nil, err
		}
	}

	if p.DSYMSource != "" {
		res.DSYMPath = p.DSYMDestination
		if p.DSYMInPlace {
			log.Debug("debug symbols already at destination", "path", p.DSYMDestination)
		} else {
			log.Debug("copying debug symbols", "from", p.DSYMSource, "to", p.DSYMDestination)
			if err := e.fs.CreateFolder(filepath.Dir(p.DSYMDestination)); err != nil {
				return nil, &CopyFailedError{From: p.DSYMSource, To: p.DSYMDestination, Cause: err}
			}
			if err := e.replace(p.DSYMSource, p.DSYMDestination); err != nil {
				return nil, err
			}
		}
	}

	if len(p.Strip) > 0 {
		log.Debug("removing unsupported architectures", "binary", p.Executable, "archs", p.Strip)
		if err := e.stripper.Remove(ctx, p.Executable, p.Strip); err != nil {
			return nil, &ArchitectureStripError{Binary: p.Executable, Archs: p.Strip, Cause: err}
		}
		res.Stripped = p.Strip
		res.Architectures = p.Supported
	}

	if p.Sign {
		log.Debug("signing framework", "path", p.Destination, "identity", p.Identity)
		if err := e.signer.Sign(ctx, p.Destination, p.Identity, p.SigningFlags); err != nil {
			return nil, &SigningFailedError{Path: p.Destination, Identity: p.Identity, Cause: err}
		}
		res.Signed = true
		res.Identity = p.Identity
	}

	log.Info("embedded framework",
		"framework", filepath.Base(p.Destination),
		"destination", p.Destination,
		"action", p.Action,
		"signed", res.Signed,
	)
	return res, nil
}

// replace deletes whatever is at to and copies from into its place.
func (e *Embedder) replace(from, to string) error {
	if err := e.fs.Delete(to); err != nil {
		return &CopyFailedError{From: from, To: to, Cause: err}
	}
	if err := e.fs.CopyTree(from, to, e.excluder.ShouldIgnore); err != nil {
		return &CopyFailedError{From: from, To: to, Cause: err}
	}
	return nil
}

// sameLocation reports whether dst is src, possibly reached through symlinks.
// A dst that is itself a link never counts: replacing it only removes the link.
func (e *Embedder) sameLocation(src, dst string) bool {
	if src == dst {
		return true
	}
	info, err := e.fs.Lstat(dst)
	if err != nil || info.Mode()&os.ModeSymlink != 0 {
		return false
	}
	resolvedSrc, err := e.fs.ResolveLinks(src)
	if err != nil {
		return false
	}
	resolvedDst, err := e.fs.ResolveLinks(dst)
	if err != nil {
		return false
	}
	return resolvedSrc == resolvedDst
}

func (e *Embedder) absolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := e.fs.CurrentPath()
	if err != nil {
		return "", &MissingDependencyError{Path: path, Cause: err}
	}
	return filepath.Join(cwd, path), nil
}
