package embed

import (
	"github.com/Cyclone1070/fwembed/internal/xcodebuild"
)

// Plan is the set of decisions an embedding makes, computed without touching disk.
type Plan struct {
	Source         string
	FrameworksPath string
	Destination    string
	Action         xcodebuild.Action
	// InPlace is set when the bundle already lives at its destination.
	InPlace bool

	DSYMSource      string
	DSYMDestination string
	DSYMInPlace     bool

	Architectures []string
	ValidArchs    []string
	Supported     []string
	// Executable is the binary inside Destination that Strip applies to.
	Executable string
	Strip      []string

	SigningRequired bool
	// Sign is SigningRequired with a non-empty identity.
	Sign         bool
	Identity     string
	SigningFlags []string
}

// HasDSYM reports whether debug symbols will be copied.
func (p *Plan) HasDSYM() bool {
	return p.DSYMSource != "" && !p.DSYMInPlace
}

// Result describes a completed embedding.
type Result struct {
	FrameworkPath string
	DSYMPath      string
	Architectures []string
	Stripped      []string
	Signed        bool
	Identity      string
}
