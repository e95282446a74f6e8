package xcodebuild

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Build setting names read from the ambient environment.
const (
	KeyConfiguration                = "CONFIGURATION"
	KeyConfigurationBuildDir        = "CONFIGURATION_BUILD_DIR"
	KeyFrameworksFolderPath         = "FRAMEWORKS_FOLDER_PATH"
	KeyBuiltProductsDir             = "BUILT_PRODUCTS_DIR"
	KeyTargetBuildDir               = "TARGET_BUILD_DIR"
	KeyDwarfDsymFolderPath          = "DWARF_DSYM_FOLDER_PATH"
	KeyExpandedCodeSignIdentity     = "EXPANDED_CODE_SIGN_IDENTITY"
	KeyCodeSigningRequired          = "CODE_SIGNING_REQUIRED"
	KeyCodeSigningAllowed           = "CODE_SIGNING_ALLOWED"
	KeyExpandedCodeSignIdentityName = "EXPANDED_CODE_SIGN_IDENTITY_NAME"
	KeyOtherCodeSignFlags           = "OTHER_CODE_SIGN_FLAGS"
	KeyValidArchs                   = "VALID_ARCHS"
	KeySrcRoot                      = "SRCROOT"
	KeyAction                       = "ACTION"
)

// RequiredKeys must all be present for ambient construction to succeed.
var RequiredKeys = []string{
	KeyConfiguration,
	KeyConfigurationBuildDir,
	KeyFrameworksFolderPath,
	KeyBuiltProductsDir,
	KeyTargetBuildDir,
	KeyDwarfDsymFolderPath,
	KeyExpandedCodeSignIdentity,
	KeyCodeSigningRequired,
	KeyCodeSigningAllowed,
	KeyExpandedCodeSignIdentityName,
	KeyOtherCodeSignFlags,
	KeyValidArchs,
	KeySrcRoot,
	KeyAction,
}

// Settings holds the raw build settings an Environment is built from.
type Settings struct {
	Configuration                string   `mapstructure:"CONFIGURATION"`
	ConfigurationBuildDir        string   `mapstructure:"CONFIGURATION_BUILD_DIR"`
	FrameworksFolderPath         string   `mapstructure:"FRAMEWORKS_FOLDER_PATH"`
	BuiltProductsDir             string   `mapstructure:"BUILT_PRODUCTS_DIR"`
	TargetBuildDir               string   `mapstructure:"TARGET_BUILD_DIR"`
	DwarfDsymFolderPath          string   `mapstructure:"DWARF_DSYM_FOLDER_PATH"`
	ExpandedCodeSignIdentity     string   `mapstructure:"EXPANDED_CODE_SIGN_IDENTITY"`
	CodeSigningRequired          string   `mapstructure:"CODE_SIGNING_REQUIRED"`
	CodeSigningAllowed           string   `mapstructure:"CODE_SIGNING_ALLOWED"`
	ExpandedCodeSignIdentityName string   `mapstructure:"EXPANDED_CODE_SIGN_IDENTITY_NAME"`
	OtherCodeSignFlags           string   `mapstructure:"OTHER_CODE_SIGN_FLAGS"`
	ValidArchs                   []string `mapstructure:"VALID_ARCHS"`
	SrcRoot                      string   `mapstructure:"SRCROOT"`
	Action                       Action   `mapstructure:"ACTION"`
}

// Environment is an immutable snapshot of the build settings needed to embed
// a framework. It is either fully populated or not constructed at all.
type Environment struct {
	settings  Settings
	rawAction string
}

// New builds an Environment from explicit settings. An unknown action falls
// back to ActionInstall, the same as ambient construction.
func New(s Settings) *Environment {
	raw := string(s.Action)
	s.Action = ActionFromString(raw)
	s.ValidArchs = uniqueFields(s.ValidArchs)
	return &Environment{settings: s, rawAction: raw}
}

// Lookup builds an Environment from a key lookup function such as os.LookupEnv.
// It returns false when any of RequiredKeys is missing.
func Lookup(lookup func(string) (string, bool)) (*Environment, bool) {
	values := make(map[string]string, len(RequiredKeys))
	for _, key := range RequiredKeys {
		v, ok := lookup(key)
		if !ok {
			return nil, false
		}
		values[key] = v
	}

	s, err := decodeSettings(values)
	if err != nil {
		return nil, false
	}

	return &Environment{settings: s, rawAction: values[KeyAction]}, true
}

// FromMap builds an Environment from a map of build settings.
func FromMap(values map[string]string) (*Environment, bool) {
	return Lookup(mapLookup(values))
}

// FromProcess builds an Environment from the process environment.
func FromProcess() (*Environment, bool) {
	return Lookup(os.LookupEnv)
}

// MissingKeys returns the required keys lookup cannot resolve, in RequiredKeys order.
func MissingKeys(lookup func(string) (string, bool)) []string {
	var missing []string
	for _, key := range RequiredKeys {
		if _, ok := lookup(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Overlay returns a lookup that consults values first and falls back to next.
func Overlay(values map[string]string, next func(string) (string, bool)) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := values[key]; ok {
			return v, true
		}
		if next == nil {
			return "", false
		}
		return next(key)
	}
}

func mapLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func decodeSettings(values map[string]string) (Settings, error) {
	var s Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(archListHook, actionHook),
		Result:     &s,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// archListHook splits whitespace-separated strings into an ordered set.
func archListHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	return uniqueFields(strings.Fields(reflect.ValueOf(data).String())), nil
}

func actionHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Action("")) {
		return data, nil
	}
	return ActionFromString(reflect.ValueOf(data).String()), nil
}

func uniqueFields(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// isYes interprets a toolchain boolean setting.
func isYes(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "YES", "1", "TRUE":
		return true
	}
	return false
}

// -- Derived values --

// DestinationPath is the root the framework is embedded under: the built
// products directory for install, the target build directory otherwise.
func (e *Environment) DestinationPath() string {
	if e.settings.Action == ActionInstall {
		return e.settings.BuiltProductsDir
	}
	return e.settings.TargetBuildDir
}

// FrameworksPath is DestinationPath joined with FRAMEWORKS_FOLDER_PATH.
func (e *Environment) FrameworksPath() string {
	return filepath.Join(e.DestinationPath(), e.settings.FrameworksFolderPath)
}

// SigningRequired reports whether CODE_SIGNING_REQUIRED and CODE_SIGNING_ALLOWED are both set.
func (e *Environment) SigningRequired() bool {
	return isYes(e.settings.CodeSigningRequired) && isYes(e.settings.CodeSigningAllowed)
}

// SigningIdentity returns the expanded identity, or the identity name when it is empty.
func (e *Environment) SigningIdentity() string {
	if id := strings.TrimSpace(e.settings.ExpandedCodeSignIdentity); id != "" {
		return id
	}
	return strings.TrimSpace(e.settings.ExpandedCodeSignIdentityName)
}

// CodeSignFlags splits OTHER_CODE_SIGN_FLAGS into arguments.
func (e *Environment) CodeSignFlags() []string {
	return strings.Fields(e.settings.OtherCodeSignFlags)
}

// ActionFellBack reports whether ACTION held a value that is not a known action.
func (e *Environment) ActionFellBack() bool {
	_, ok := ParseAction(e.rawAction)
	return !ok
}

// RawAction is the ACTION value as supplied.
func (e *Environment) RawAction() string { return e.rawAction }

// -- Accessors --

// Settings returns a copy of the underlying settings.
func (e *Environment) Settings() Settings {
	s := e.settings
	s.ValidArchs = slices.Clone(e.settings.ValidArchs)
	return s
}

func (e *Environment) Configuration() string         { return e.settings.Configuration }
func (e *Environment) ConfigurationBuildDir() string { return e.settings.ConfigurationBuildDir }
func (e *Environment) FrameworksFolderPath() string  { return e.settings.FrameworksFolderPath }
func (e *Environment) BuiltProductsDir() string      { return e.settings.BuiltProductsDir }
func (e *Environment) TargetBuildDir() string        { return e.settings.TargetBuildDir }
func (e *Environment) DwarfDsymFolderPath() string   { return e.settings.DwarfDsymFolderPath }
func (e *Environment) ExpandedCodeSignIdentity() string {
	return e.settings.ExpandedCodeSignIdentity
}
func (e *Environment) ExpandedCodeSignIdentityName() string {
	return e.settings.ExpandedCodeSignIdentityName
}
func (e *Environment) CodeSigningRequired() string { return e.settings.CodeSigningRequired }
func (e *Environment) CodeSigningAllowed() string  { return e.settings.CodeSigningAllowed }
func (e *Environment) OtherCodeSignFlags() string  { return e.settings.OtherCodeSignFlags }
func (e *Environment) ValidArchs() []string        { return slices.Clone(e.settings.ValidArchs) }
func (e *Environment) SrcRoot() string             { return e.settings.SrcRoot }
func (e *Environment) Action() Action              { return e.settings.Action }
