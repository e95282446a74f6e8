package ui

import (
	"testing"

	"github.com/Cyclone1070/fwembed/internal/tool/embed"
	"github.com/Cyclone1070/fwembed/internal/xcodebuild"
	"github.com/stretchr/testify/assert"
)

func samplePlan() *embed.Plan {
	return &embed.Plan{
		Source:          "/deps/Foo.framework",
		FrameworksPath:  "/out/App.app/Frameworks",
		Destination:     "/out/App.app/Frameworks/Foo.framework",
		Action:          xcodebuild.ActionInstall,
		DSYMSource:      "/deps/Foo.framework.dSYM",
		DSYMDestination: "/dsyms/Foo.framework.dSYM",
		Architectures:   []string{"arm64", "x86_64"},
		ValidArchs:      []string{"arm64"},
		Supported:       []string{"arm64"},
		SigningRequired: true,
		Sign:            true,
		Identity:        "ABCDEF",
		SigningFlags:    []string{"--timestamp=none"},
	}
}

func TestRenderPlan(t *testing.T) {
	out := RenderPlan(samplePlan())

	assert.Contains(t, out, "Embed Foo.framework")
	assert.Contains(t, out, "install")
	assert.Contains(t, out, "/out/App.app/Frameworks/Foo.framework")
	assert.Contains(t, out, "/dsyms/Foo.framework.dSYM")
	assert.Contains(t, out, "arm64 x86_64")
	assert.Contains(t, out, "ABCDEF (--timestamp=none)")
	assert.NotContains(t, out, "Strip")
}

func TestRenderPlan_StripAndSkippedSigning(t *testing.T) {
	p := samplePlan()
	p.Strip = []string{"x86_64"}
	p.Executable = "/out/App.app/Frameworks/Foo.framework/Foo"
	p.Sign = false
	p.Identity = ""

	out := RenderPlan(p)

	assert.Contains(t, out, "Strip")
	assert.Contains(t, out, "x86_64 from /out/App.app/Frameworks/Foo.framework/Foo")
	assert.Contains(t, out, skippedSigning)
}

func TestRenderPlan_InPlaceWithoutSigning(t *testing.T) {
	p := samplePlan()
	p.InPlace = true
	p.DSYMSource = ""
	p.SigningRequired = false
	p.Sign = false

	out := RenderPlan(p)

	assert.Contains(t, out, "already in place")
	assert.Contains(t, out, "not required")
}

func TestRenderEnvironment(t *testing.T) {
	env := xcodebuild.New(xcodebuild.Settings{
		Configuration:            "Release",
		BuiltProductsDir:         "/out",
		TargetBuildDir:           "/intermediate",
		FrameworksFolderPath:     "App.app/Frameworks",
		ExpandedCodeSignIdentity: "ABCDEF",
		CodeSigningRequired:      "YES",
		CodeSigningAllowed:       "YES",
		ValidArchs:               []string{"arm64", "arm64e"},
		Action:                   xcodebuild.Action("docbuild"),
	})

	out := RenderEnvironment(env)

	assert.Contains(t, out, "Build environment")
	assert.Contains(t, out, "install (from docbuild)")
	assert.Contains(t, out, "/out/App.app/Frameworks")
	assert.Contains(t, out, "arm64 arm64e")
	assert.Contains(t, out, "yes, as ABCDEF")
	assert.Contains(t, out, xcodebuild.KeyDwarfDsymFolderPath)
}

func TestRenderMissingKeys(t *testing.T) {
	out := RenderMissingKeys([]string{xcodebuild.KeySrcRoot, xcodebuild.KeyAction})

	assert.Equal(t, "missing build settings:\n  SRCROOT\n  ACTION", out)
}
