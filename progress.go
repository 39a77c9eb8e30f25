package ipak

// ProgressEvent represents a progress update during a build.
type ProgressEvent struct {
	// Stage identifies the current phase of the build.
	Stage ProgressStage

	// Path is the source file currently being processed, if applicable.
	Path string

	// BytesDone is the number of arena bytes in use.
	BytesDone uint64

	// BytesTotal is the arena capacity.
	BytesTotal uint64

	// FilesDone is the number of files completed in the current stage.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown (e.g., during collection).
	FilesTotal int
}

// ProgressStage identifies the current phase of a build.
type ProgressStage uint8

// Build stages, in the order they run.
const (
	// StageCollecting indicates the scan root is being walked.
	StageCollecting ProgressStage = iota

	// StageLoading indicates asset payloads are being decoded into the pack.
	StageLoading

	// StageIndexing indicates hash chains are being linked.
	StageIndexing

	// StageWriting indicates the pack is being written to disk.
	StageWriting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageCollecting:
		return "collecting"
	case StageLoading:
		return "loading"
	case StageIndexing:
		return "indexing"
	case StageWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during a build.
// Builds are sequential, so calls never overlap.
type ProgressFunc func(ProgressEvent)
