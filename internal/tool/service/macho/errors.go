package macho

import (
	"fmt"
	"strings"
)

// ExecutableNotFoundError is returned when a bundle has no executable at any known location.
type ExecutableNotFoundError struct {
	Bundle string
	Tried  []string
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("no executable found in %s (tried %s)", e.Bundle, strings.Join(e.Tried, ", "))
}

// FormatError is returned when an executable cannot be read as a Mach-O binary.
type FormatError struct {
	Path  string
	Cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s is not a readable Mach-O binary: %v", e.Path, e.Cause)
}
func (e *FormatError) Unwrap() error { return e.Cause }
