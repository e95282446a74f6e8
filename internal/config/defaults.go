package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Embed EmbedConfig `json:"embed" yaml:"embed"`
	Tools ToolsConfig `json:"tools" yaml:"tools"`
	Log   LogConfig   `json:"log" yaml:"log"`
}

type EmbedConfig struct {
	// Gitignore-syntax patterns skipped when copying a bundle.
	CopyExclude []string `json:"copy_exclude" yaml:"copy_exclude"`

	// Remove slices outside VALID_ARCHS from the embedded binary with lipo.
	StripUnsupportedArchs bool `json:"strip_unsupported_archs" yaml:"strip_unsupported_archs"` // Default: false

	// Value passed to codesign --preserve-metadata. Empty disables the flag.
	PreserveMetadata string `json:"preserve_metadata" yaml:"preserve_metadata"` // Default: identifier,entitlements
}

type ToolsConfig struct {
	// xcrun shim used to locate codesign and lipo
	Xcrun string `json:"xcrun" yaml:"xcrun"` // Default: /usr/bin/xcrun

	// Command Execution
	CommandTimeoutSeconds int   `json:"command_timeout_seconds" yaml:"command_timeout_seconds"` // Default: 300
	MaxCommandOutputSize  int64 `json:"max_command_output_size" yaml:"max_command_output_size"` // Default: 1024 * 1024 (1MB)
	GracefulShutdownMs    int   `json:"graceful_shutdown_ms" yaml:"graceful_shutdown_ms"`       // Default: 2000
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // Default: info
	Format string `json:"format" yaml:"format"` // Default: text
}

// DefaultCopyExclude mirrors the filters Xcode-style embed scripts pass to rsync.
var DefaultCopyExclude = []string{
	".DS_Store",
	"CVS/",
	".svn/",
	".git/",
	".hg/",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embed: EmbedConfig{
			CopyExclude:           append([]string(nil), DefaultCopyExclude...),
			StripUnsupportedArchs: false,
			PreserveMetadata:      "identifier,entitlements",
		},
		Tools: ToolsConfig{
			Xcrun:                 "/usr/bin/xcrun",
			CommandTimeoutSeconds: 300,
			MaxCommandOutputSize:  1024 * 1024,
			GracefulShutdownMs:    2000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
