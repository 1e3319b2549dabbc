// Package catalog indexes the content already present at the backup
// destination so the planner can recognize duplicates without re-copying.
//
// The index is two-level: byte size first, content fingerprint second. Size
// alone is never proof of duplication; it only prunes the candidate set so
// that destination files with a unique size are never hashed at all. The
// catalog lives for exactly one run and is rebuilt from the destination
// tree on the next, so it can never drift from reality.
package catalog

import (
	"github.com/rs/zerolog"

	"github.com/shutterback/shutterback/internal/errors"
	"github.com/shutterback/shutterback/internal/fingerprint"
	"github.com/shutterback/shutterback/internal/logging"
	"github.com/shutterback/shutterback/internal/walker"
)

// Entry is one known file, destination-side or speculatively registered
// during the run. Its fingerprint is computed on first use and cached.
type Entry struct {
	RelPath string
	Size    int64

	absPath string
	digest  string
}

// NewEntry creates an entry whose fingerprint, when first requested, is
// computed from the file at absPath.
func NewEntry(relPath string, size int64, absPath string) *Entry {
	return &Entry{RelPath: relPath, Size: size, absPath: absPath}
}

// Fingerprint returns the entry's content fingerprint, hashing the backing
// file on first call. Subsequent calls return the cached digest.
func (e *Entry) Fingerprint() (string, error) {
	if e.digest != "" {
		return e.digest, nil
	}
	digest, err := fingerprint.File(e.absPath)
	if err != nil {
		return "", err
	}
	e.digest = digest
	return digest, nil
}

// Catalog maps byte sizes to the entries sharing that size. It is owned by
// a single run and a single goroutine; no locking.
type Catalog struct {
	buckets map[int64][]*Entry
	byPath  map[string]*Entry
	logger  zerolog.Logger
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		buckets: make(map[int64][]*Entry),
		byPath:  make(map[string]*Entry),
		logger:  logging.GetLogger("catalog"),
	}
}

// Build scans the destination tree and indexes every media file by size.
// No file content is read; fingerprints stay lazy until a size collision
// forces a comparison.
//
// If the walk could not complete, Build returns the partial catalog
// together with a CATALOG_SCAN_FAILED error. The caller decides whether a
// degraded run (risking redundant copies, never data loss) is acceptable.
func Build(root string, extensions []string, excludes []string) (*Catalog, error) {
	w, err := walker.New(root, extensions, excludes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCatalogScan, "open destination %s", root)
	}

	c := New()
	var scanErr error
	for f, err := range w.Files() {
		if err != nil {
			c.logger.Warn().Err(err).Str("path", f.Path).Msg("destination entry unreadable")
			if scanErr == nil {
				scanErr = err
			}
			continue
		}
		c.Register(NewEntry(f.RelPath, f.Size, f.Path))
	}

	c.logger.Debug().Int("files", c.Len()).Str("root", root).Msg("catalog built")

	if scanErr != nil {
		return c, errors.Wrap(scanErr, errors.ErrCatalogScan, "scan destination %s", root)
	}
	return c, nil
}

// Register adds an entry to the index. An existing entry at the same
// relative path is replaced, so when the destination holds several records
// for one path the most recently indexed one wins.
func (c *Catalog) Register(e *Entry) {
	if old, ok := c.byPath[e.RelPath]; ok {
		c.logger.Warn().Str("path", e.RelPath).Msg("replacing previously indexed entry at same relative path")
		c.removeFromBucket(old)
	}
	c.byPath[e.RelPath] = e
	c.buckets[e.Size] = append(c.buckets[e.Size], e)
}

// LookupPath returns the entry indexed at the given relative path, if any.
func (c *Catalog) LookupPath(relPath string) (*Entry, bool) {
	e, ok := c.byPath[relPath]
	return e, ok
}

// SizeBucket returns every known entry with the given byte size. The
// returned slice is the catalog's own; callers must not mutate it.
func (c *Catalog) SizeBucket(size int64) []*Entry {
	return c.buckets[size]
}

// Len returns the number of indexed entries.
func (c *Catalog) Len() int {
	return len(c.byPath)
}

func (c *Catalog) removeFromBucket(e *Entry) {
	bucket := c.buckets[e.Size]
	for i, candidate := range bucket {
		if candidate == e {
			c.buckets[e.Size] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(c.buckets[e.Size]) == 0 {
		delete(c.buckets, e.Size)
	}
}
