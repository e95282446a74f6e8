// Package ui renders plans and build environments for the terminal.
package ui

import (
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/fwembed/internal/tool/embed"
	"github.com/Cyclone1070/fwembed/internal/xcodebuild"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	none           = "-"
	skippedSigning = "skipped, no identity"
)

// row is a label and value; warn highlights the value.
type row struct {
	key   string
	value string
	warn  bool
}

func renderTable(title string, rows []row) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(BorderStyle).
		Headers("SETTING", "VALUE").
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return HeaderStyle
			case c == 0:
				return KeyStyle
			case rows[r].warn:
				return WarnStyle
			default:
				return ValueStyle
			}
		})
	for _, r := range rows {
		t.Row(r.key, r.value)
	}
	return lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), t.String())
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

func list(values []string) string {
	return orNone(strings.Join(values, " "))
}

// RenderPlan renders the decisions of a dry run.
func RenderPlan(p *embed.Plan) string {
	copyStep := p.Source + " -> " + p.Destination
	if p.InPlace {
		copyStep = "already in place"
	}

	dsym := none
	switch {
	case p.DSYMInPlace:
		dsym = "already in place"
	case p.DSYMSource != "":
		dsym = p.DSYMSource + " -> " + p.DSYMDestination
	}

	signing := "not required"
	switch {
	case p.Sign:
		signing = p.Identity
		if len(p.SigningFlags) > 0 {
			signing += " (" + strings.Join(p.SigningFlags, " ") + ")"
		}
	case p.SigningRequired:
		signing = skippedSigning
	}

	rows := []row{
		{key: "Action", value: p.Action.String()},
		{key: "Frameworks folder", value: p.FrameworksPath},
		{key: "Copy", value: copyStep},
		{key: "Debug symbols", value: dsym},
		{key: "Architectures", value: list(p.Architectures)},
		{key: "Valid architectures", value: list(p.ValidArchs)},
		{key: "Supported", value: list(p.Supported)},
	}
	if len(p.Strip) > 0 {
		rows = append(rows, row{key: "Strip", value: strings.Join(p.Strip, " ") + " from " + p.Executable, warn: true})
	}
	rows = append(rows, row{key: "Signing", value: signing, warn: signing == skippedSigning})

	return renderTable("Embed "+filepath.Base(p.Source), rows)
}

// RenderEnvironment renders the build settings snapshot and the paths derived from it.
func RenderEnvironment(env *xcodebuild.Environment) string {
	action := env.Action().String()
	if env.ActionFellBack() {
		action += " (from " + orNone(env.RawAction()) + ")"
	}
	signing := "no"
	if env.SigningRequired() {
		signing = "yes, as " + orNone(env.SigningIdentity())
	}

	rows := []row{
		{key: xcodebuild.KeyAction, value: action, warn: env.ActionFellBack()},
		{key: xcodebuild.KeyConfiguration, value: orNone(env.Configuration())},
		{key: xcodebuild.KeyConfigurationBuildDir, value: orNone(env.ConfigurationBuildDir())},
		{key: xcodebuild.KeyBuiltProductsDir, value: orNone(env.BuiltProductsDir())},
		{key: xcodebuild.KeyTargetBuildDir, value: orNone(env.TargetBuildDir())},
		{key: xcodebuild.KeyFrameworksFolderPath, value: orNone(env.FrameworksFolderPath())},
		{key: xcodebuild.KeyDwarfDsymFolderPath, value: orNone(env.DwarfDsymFolderPath())},
		{key: xcodebuild.KeyValidArchs, value: list(env.ValidArchs())},
		{key: xcodebuild.KeySrcRoot, value: orNone(env.SrcRoot())},
		{key: xcodebuild.KeyOtherCodeSignFlags, value: orNone(env.OtherCodeSignFlags())},
		{key: "Destination", value: orNone(env.DestinationPath())},
		{key: "Frameworks path", value: orNone(env.FrameworksPath())},
		{key: "Signing", value: signing},
	}
	return renderTable("Build environment", rows)
}

// RenderMissingKeys lists the build settings an environment could not be built without.
func RenderMissingKeys(keys []string) string {
	lines := []string{"missing build settings:"}
	for _, k := range keys {
		lines = append(lines, "  "+k)
	}
	return strings.Join(lines, "\n")
}
