package safety

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrProtectedPath     = errors.New("protected path")
	ErrContainsProtected = errors.New("target contains a protected path")
	ErrOutsideAllowed    = errors.New("outside allowed roots")
	ErrSymlinkEscape     = errors.New("symlink resolves to a disallowed path")
)

// Validator decides whether a path may be shredded
type Validator struct {
	AllowedRoots   []string
	ProtectedPaths []string

	resolvedRoots     []string // AllowedRoots with symlinks resolved
	resolvedProtected []string // ProtectedPaths plus their symlink-resolved forms
}

// NewValidator creates a validator. An empty allowed list places no root restriction.
func NewValidator(allowed []string, extraProtected []string) *Validator {
	roots := normalizeRoots(allowed)
	protected := defaultProtected(normalizeRoots(extraProtected))
	return &Validator{
		AllowedRoots:      roots,
		ProtectedPaths:    protected,
		resolvedRoots:     resolveRoots(roots),
		resolvedProtected: append(append([]string{}, protected...), resolveRoots(protected)...),
	}
}

// ValidateShredTarget is the single check run before a shred is started.
// The path as given and its symlink-resolved form must both pass.
func (v *Validator) ValidateShredTarget(path string) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	if err := v.check(p, v.ProtectedPaths, v.AllowedRoots); err != nil {
		return err
	}

	resolved, err := ResolvePath(p)
	if err != nil {
		// A missing target is reported by the shred itself
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("resolve %s: %w", p, err)
	}
	if resolved == p {
		return nil
	}

	roots := append(append([]string{}, v.AllowedRoots...), v.resolvedRoots...)
	if err := v.check(resolved, v.resolvedProtected, roots); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrSymlinkEscape, p, resolved, err)
	}
	return nil
}

func (v *Validator) check(p string, protected, roots []string) error {
	if IsProtectedPath(p, protected) {
		return ErrProtectedPath
	}

	// A recursive shred of an ancestor would reach the protected path
	if ContainsProtectedPath(p, protected) {
		return ErrContainsProtected
	}

	if len(v.AllowedRoots) > 0 && !IsWithinAllowedRoots(p, roots) {
		return ErrOutsideAllowed
	}

	return nil
}

// ResolvePath follows every symlink in a normalized path
func ResolvePath(cleanAbs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(cleanAbs)
	if err != nil {
		return "", err
	}
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolvedAbs), nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// IsWithinAllowedRoots checks if path is within any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// IsProtectedPath checks if path is a protected path or lies beneath one
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	if p == string(os.PathSeparator) {
		return true
	}

	for _, prot := range protected {
		if hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

// ContainsProtectedPath checks if any protected path lies beneath path
func ContainsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)
	for _, prot := range protected {
		prot = filepath.Clean(prot)
		if prot != p && hasPathPrefix(prot, p) {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path equals prefix or is nested under it
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return path == prefix
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts slice of roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}

// resolveRoots resolves symlinks in each root, skipping roots that do not exist
func resolveRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if resolved, err := ResolvePath(r); err == nil {
			out = append(out, resolved)
		}
	}
	return out
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := []string{
		"/",
		"/etc",
		"/bin",
		"/usr",
		"/boot",
		"/lib",
		"/lib64",
		"/sbin",
		"/proc",
		"/sys",
		"/dev",
		"/etc/shredder",
	}
	return append(base, extra...)
}
