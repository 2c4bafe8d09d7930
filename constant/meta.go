// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Segrab is the canonical application identifier used for filesystem paths and CLI branding.
	Segrab = "segrab"

	// Version is the current application semantic version string.
	Version = "0.3.1"

	// UserAgent is the default HTTP User-Agent string sent to the segment origin.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Artifact names inside a target's work and download directories.
const (
	RawDir        = "raw"
	ConvertedDir  = "converted"
	ConcatList    = "segments.txt"
	LockFile      = ".lock"
	OutputName    = "video"
	ConvertedExt  = ".mp4"
	PartialSuffix = ".part"
)

// Build metadata, set with -ldflags "-X github.com/segrab-cli/segrab/constant.Revision=...".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
