// Package planner decides, file by file, what the minimal safe set of copy
// operations is.
//
// Resolution follows the size-then-hash rule: a source file whose byte size
// appears nowhere in the catalog is new by construction and is never
// hashed. Only a size collision forces fingerprints, and a fingerprint
// match anywhere at the destination makes the file a duplicate no matter
// its filename or location. Identical size with different content is a
// copy; fixed-size formats make that case real, not theoretical.
package planner

import (
	"iter"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/shutterback/shutterback/internal/errors"
	"github.com/shutterback/shutterback/internal/logging"
	"github.com/shutterback/shutterback/internal/walker"
	"github.com/shutterback/shutterback/pkg/catalog"
)

// Planner streams source files through the duplicate resolver and emits
// transfer tasks preserving the source's relative structure.
type Planner struct {
	walker   *walker.Walker
	catalog  *catalog.Catalog
	destRoot string
	logger   zerolog.Logger
}

// New creates a planner over the given source walker and destination
// catalog. destRoot is the destination root the tasks' DestPath mirrors
// relative structure under.
func New(w *walker.Walker, c *catalog.Catalog, destRoot string) *Planner {
	return &Planner{
		walker:   w,
		catalog:  c,
		destRoot: destRoot,
		logger:   logging.GetLogger("planner"),
	}
}

// Tasks lazily enumerates the transfer plan in walk order. The first task
// is available before the tree has been fully scanned, so arbitrarily
// large libraries never need materializing. Resolution registers copied
// content into the catalog as it goes, so a later source file with
// identical bytes, including a re-encounter of the same file through a
// duplicated path, resolves as a duplicate within the same enumeration.
func (p *Planner) Tasks() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for f, err := range p.walker.Files() {
			if err != nil {
				task := Task{
					SourcePath:  f.Path,
					RelPath:     f.RelPath,
					Disposition: DispositionFailed,
					Reason:      "source unreadable",
					Err:         errors.Wrap(err, errors.ErrUnreadableSource, "read %s", f.Path),
				}
				if !yield(task) {
					return
				}
				continue
			}
			if !yield(p.Resolve(f)) {
				return
			}
		}
	}
}

// Resolve decides the disposition for a single source file against the
// catalog. On a copy decision the file's identity is registered
// immediately, before the next file is resolved.
func (p *Planner) Resolve(f walker.FileInfo) Task {
	task := Task{
		SourcePath: f.Path,
		RelPath:    f.RelPath,
		DestPath:   filepath.Join(p.destRoot, f.RelPath),
		Size:       f.Size,
	}

	src := catalog.NewEntry(f.RelPath, f.Size, f.Path)

	bucket := p.catalog.SizeBucket(f.Size)
	if len(bucket) == 0 {
		if existing, ok := p.catalog.LookupPath(f.RelPath); ok {
			// The destination holds a file of a different size at this
			// exact path. Overwriting would destroy the historical copy.
			return p.skipChanged(task, existing)
		}
		// Unique size: new content, no hashing needed. The entry is
		// registered with its fingerprint still lazy; it is only ever
		// computed if a later file collides on this size.
		p.catalog.Register(src)
		task.Disposition = DispositionCopy
		task.Reason = "no size match at destination"
		return task
	}

	digest, err := src.Fingerprint()
	if err != nil {
		task.Disposition = DispositionFailed
		task.Reason = "fingerprint failed"
		task.Err = errors.Wrap(err, errors.ErrUnreadableSource, "fingerprint %s", f.Path)
		return task
	}

	for _, known := range bucket {
		knownDigest, err := known.Fingerprint()
		if err != nil {
			// An unreadable destination entry cannot prove duplication.
			// Treating it as a non-match errs toward an extra copy,
			// never toward losing a file.
			p.logger.Warn().Err(err).Str("path", known.RelPath).
				Msg("cannot fingerprint destination entry, treating as non-match")
			continue
		}
		if knownDigest == digest {
			task.Disposition = DispositionSkipDuplicate
			task.Reason = "content matches " + known.RelPath
			return task
		}
	}

	if existing, ok := p.catalog.LookupPath(f.RelPath); ok {
		// Same path, same size, different bytes: the file changed at the
		// source. The destination's copy is preserved, not overwritten.
		return p.skipChanged(task, existing)
	}

	p.catalog.Register(src)
	task.Disposition = DispositionCopy
	task.Reason = "size collision but content differs"
	return task
}

func (p *Planner) skipChanged(task Task, existing *catalog.Entry) Task {
	p.logger.Warn().Str("path", task.RelPath).
		Msg("source content changed, keeping existing destination copy")
	task.Disposition = DispositionSkipChangedPolicy
	task.Reason = "destination already has different content at " + existing.RelPath
	return task
}
