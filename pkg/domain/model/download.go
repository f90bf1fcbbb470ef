package model

// DownloadResult represents one successfully materialized file
type DownloadResult struct {
	Path string // Local file path
	Size int64  // Size in bytes
}

// AttemptFailure records one rejected download attempt for the report
type AttemptFailure struct {
	URL    string
	Reason string
}
