package fs

import (
	"errors"
	"fmt"
)

// -- Errors --

type CopyError struct {
	From  string
	To    string
	Cause error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("failed to copy %s to %s: %v", e.From, e.To, e.Cause)
}
func (e *CopyError) Unwrap() error { return e.Cause }

type MkdirError struct {
	Path  string
	Cause error
}

func (e *MkdirError) Error() string {
	return fmt.Sprintf("failed to create folder %s: %v", e.Path, e.Cause)
}
func (e *MkdirError) Unwrap() error { return e.Cause }

type DeleteError struct {
	Path  string
	Cause error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", e.Path, e.Cause)
}
func (e *DeleteError) Unwrap() error { return e.Cause }

type SymlinkError struct {
	Target string
	Link   string
	Cause  error
}

func (e *SymlinkError) Error() string {
	return fmt.Sprintf("failed to link %s -> %s: %v", e.Link, e.Target, e.Cause)
}
func (e *SymlinkError) Unwrap() error { return e.Cause }

type ResolveError struct {
	Path  string
	Cause error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Path, e.Cause)
}
func (e *ResolveError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrDestinationExists = errors.New("destination already exists")
	ErrNotAFolder        = errors.New("not a folder")
	ErrTooManyLinks      = errors.New("too many levels of symbolic links")
)
