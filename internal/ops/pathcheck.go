package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/config"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import
	PathCheckWrite                      // export
)

// File extensions accepted by import and export.
var (
	ExportExtensions = []string{".jsonl"}
	ImportExtensions = []string{".md", ".markdown", ".txt"}
)

// PathPolicy decides which files import and export may touch.
type PathPolicy struct {
	// ExportsDir is always allowed.
	ExportsDir string
	Config     *config.Config
}

// Validate checks path for mode:
//   - no ".." components;
//   - an extension from exts;
//   - the file sits directly in ExportsDir or a configured allowed path, unless
//     AllowUnsafePaths is set;
//   - neither the file nor its parent directory is a symlink.
//
// Requiring the file to sit directly in an allowed directory leaves no
// intermediate directory that could be swapped for a symlink after the check.
func (p PathPolicy) Validate(path string, mode PathCheckMode, exts []string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !slices.Contains(exts, strings.ToLower(filepath.Ext(cleaned))) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of the extensions %v", exts))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if p.Config == nil || !p.Config.AllowUnsafePaths {
		allowed, err := p.allowedDirs()
		if err != nil {
			return err
		}
		parent := filepath.Dir(absPath)
		if !slices.Contains(allowed, filepath.Clean(parent)) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
		}
		if info, err := os.Lstat(parent); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewNotFound("file", path)
		}
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// allowedDirs returns ExportsDir and the absolute configured allowed paths,
// with symlinked entries resolved.
func (p PathPolicy) allowedDirs() ([]string, error) {
	var dirs []string
	if p.ExportsDir != "" {
		dirs = append(dirs, p.ExportsDir)
	}
	if p.Config != nil {
		for _, d := range p.Config.AllowedPaths {
			if filepath.IsAbs(d) {
				dirs = append(dirs, d)
			}
		}
	}

	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		out = append(out, abs)
	}
	return out, nil
}

func containsTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	}) {
		if part == ".." {
			return true
		}
	}
	return false
}
