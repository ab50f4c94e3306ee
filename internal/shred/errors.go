package shred

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrNotFound matches any *NotFoundError via errors.Is
var ErrNotFound = errors.New("not found")

// NotFoundError reports a target that is neither an existing file nor directory
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file or directory %s not found", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// OpError records the filesystem operation and path that failed
type OpError struct {
	Op   string // open, stat, seek, write, sync, close, readdir, remove
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// newOpError strips an inner *fs.PathError so the path is not repeated
func newOpError(op, path string, err error) *OpError {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &OpError{Op: op, Path: path, Err: err}
}

// IsAccessDenied reports whether err was caused by missing permissions
func IsAccessDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// opName labels err for metrics
func opName(err error) string {
	var opErr *OpError
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &opErr):
		return opErr.Op
	default:
		return "unknown"
	}
}
