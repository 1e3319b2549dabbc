package planner

// Disposition is the per-file verdict.
type Disposition string

const (
	// DispositionCopy means the content is not yet present at the
	// destination and must be transferred.
	DispositionCopy Disposition = "copy"
	// DispositionSkipDuplicate means byte-identical content already
	// exists at the destination (under any path).
	DispositionSkipDuplicate Disposition = "skip-duplicate"
	// DispositionSkipChangedPolicy means the destination already holds
	// different content at this file's exact path. Overwriting would
	// corrupt the historical copy, so the file is skipped and reported.
	DispositionSkipChangedPolicy Disposition = "skip-changed-policy"
	// DispositionFailed means the file could not be resolved; it is
	// neither copied nor silently skipped.
	DispositionFailed Disposition = "failed"
)

// Task is one planned operation, consumed exactly once by the executor.
type Task struct {
	SourcePath  string // absolute path of the source file
	RelPath     string // path under the library root, mirrored at the destination
	DestPath    string // absolute destination path
	Size        int64
	Disposition Disposition
	Reason      string // why this disposition was chosen
	Err         error  // set when Disposition is DispositionFailed
}
