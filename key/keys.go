// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Remote Source - these keys describe how segment URLs are built for a target.
const (
	SourceURLTemplate    = "source.url_template"
	SourceStartID        = "source.start_id"
	SourceExtension      = "source.extension"
	SourceSegmentSeconds = "source.segment_seconds"
)

// Network - these keys bound every request made against the origin.
const (
	NetworkTimeout        = "network.timeout"
	NetworkDelay          = "network.delay"
	NetworkRetries        = "network.retries"
	NetworkUserAgent      = "network.user_agent"
	NetworkHeaders        = "network.headers"
	NetworkTLSFingerprint = "network.tls_fingerprint"
)

// Downloads - these keys locate final artifacts and intermediate work files.
const (
	DownloadsPath              = "downloads.path"
	DownloadsWorkPath          = "downloads.work_path"
	DownloadsKeepIntermediates = "downloads.keep_intermediates"
	DownloadsOpen              = "downloads.open"
)

// Pipeline and external tooling.
const (
	PipelineStrategy = "pipeline.strategy"
	FFmpegPath       = "ffmpeg.path"
)

// History Tracking - these keys configure the registry of completed downloads.
const (
	HistorySave = "history.save"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern terminal output.
const (
	CliColored  = "cli.colored"
	CliProgress = "cli.progress"
)
