// Package xcodebuild models the build settings an Xcode-style toolchain exports
// to build phases, and the destinations derived from them.
package xcodebuild

// Action is the toolchain action currently executing, as exported in ACTION.
type Action string

const (
	ActionArchive        Action = "archive"
	ActionInstall        Action = "install"
	ActionBuild          Action = "build"
	ActionClean          Action = "clean"
	ActionInstallHeaders Action = "installhdrs"
	ActionInstallSources Action = "installsrc"
)

// Actions lists every known action.
var Actions = []Action{
	ActionArchive,
	ActionInstall,
	ActionBuild,
	ActionClean,
	ActionInstallHeaders,
	ActionInstallSources,
}

var actionAliases = map[string]Action{
	"install-headers": ActionInstallHeaders,
	"install-sources": ActionInstallSources,
}

// ParseAction maps s to an Action and reports whether s was recognized.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	if a, ok := actionAliases[s]; ok {
		return a, true
	}
	return "", false
}

// ActionFromString is ParseAction with the toolchain default: values that are
// not recognized map to ActionInstall.
func ActionFromString(s string) Action {
	if a, ok := ParseAction(s); ok {
		return a
	}
	return ActionInstall
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	_, ok := ParseAction(string(a))
	return ok
}

func (a Action) String() string {
	return string(a)
}
