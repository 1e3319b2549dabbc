// Package walker traverses a media library tree, yielding only the regular
// media files that belong in a backup.
package walker

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo represents one media file found under the root.
type FileInfo struct {
	Path    string // Absolute path
	RelPath string // Relative path from root
	Size    int64
	ModTime time.Time
}

// Walker walks a tree, filtering by media extension and exclude patterns.
// Symbolic links and hidden files are never yielded.
type Walker struct {
	root     string
	exts     map[string]struct{}
	excludes []string
}

// New creates a walker rooted at root. Extensions are matched
// case-insensitively and must include the leading dot. Excludes are
// doublestar patterns applied to slash-separated relative paths.
func New(root string, extensions []string, excludes []string) (*Walker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return &Walker{
		root:     absRoot,
		exts:     exts,
		excludes: excludes,
	}, nil
}

// Root returns the absolute root the walker operates on.
func (w *Walker) Root() string {
	return w.root
}

// Files lazily enumerates media files under the root in walk order. The
// sequence can be ranged over more than once; each enumeration is a fresh
// traversal. Entries the walk could not read are yielded with a non-nil
// error and a best-effort Path so callers can isolate the failure without
// aborting the walk.
func (w *Walker) Files() iter.Seq2[FileInfo, error] {
	return func(yield func(FileInfo, error) bool) {
		stop := false
		_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if stop {
				return filepath.SkipAll
			}
			if err != nil {
				if !yield(FileInfo{Path: path}, err) {
					stop = true
					return filepath.SkipAll
				}
				return nil
			}

			name := d.Name()
			if d.IsDir() {
				if path != w.root && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}

			// Non-regular files (symlinks, sockets, devices) are not media.
			if !d.Type().IsRegular() {
				return nil
			}
			if strings.HasPrefix(name, ".") || !w.isMedia(name) {
				return nil
			}

			relPath, rerr := filepath.Rel(w.root, path)
			if rerr != nil {
				if !yield(FileInfo{Path: path}, fmt.Errorf("get relative path: %w", rerr)) {
					stop = true
					return filepath.SkipAll
				}
				return nil
			}

			if w.isExcluded(filepath.ToSlash(relPath)) {
				return nil
			}

			info, ierr := d.Info()
			if ierr != nil {
				if !yield(FileInfo{Path: path, RelPath: relPath}, fmt.Errorf("get file info: %w", ierr)) {
					stop = true
					return filepath.SkipAll
				}
				return nil
			}

			if !yield(FileInfo{
				Path:    path,
				RelPath: relPath,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}, nil) {
				stop = true
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Count returns the number of files Files would yield successfully. It
// performs no hashing and reads no content, so it is cheap enough to run
// once up front to size a progress display.
func (w *Walker) Count() (int, error) {
	n := 0
	var firstErr error
	for _, err := range w.Files() {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n++
	}
	return n, firstErr
}

// isMedia reports whether the file name carries a supported media
// extension. Matching is case-insensitive.
func (w *Walker) isMedia(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := w.exts[ext]
	return ok
}

// isExcluded checks if a slash-separated relative path matches any exclude
// pattern. Patterns ending in / exclude a directory and everything under it.
func (w *Walker) isExcluded(path string) bool {
	for _, pattern := range w.excludes {
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			parts := strings.Split(path, "/")
			for i := 1; i <= len(parts); i++ {
				subPath := strings.Join(parts[:i], "/")
				if matched, _ := doublestar.Match(dirPattern, subPath); matched {
					return true
				}
			}
		} else {
			if matched, _ := doublestar.Match(pattern, path); matched {
				return true
			}
		}
	}
	return false
}
