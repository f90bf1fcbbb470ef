package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify download failures so the orchestrator can decide
// whether to fall through to the next method or abandon the target.
var (
	// TagAgentUnavailable marks failures of the navigation agent itself.
	// Recovered inside the navigator: the run continues with whatever
	// links were observed before the failure.
	TagAgentUnavailable = goerr.NewTag("agent_unavailable")

	// TagNoDownloadFound marks a target where no PDF link was ever
	// observed and no file was saved.
	TagNoDownloadFound = goerr.NewTag("no_download_found")

	// TagFetchRejected marks a single URL that returned a non-2xx status
	// or non-PDF content. The next observed link is still attempted.
	TagFetchRejected = goerr.NewTag("fetch_rejected")

	// TagIOFailure marks destination directory or file write failures.
	// Fatal for the target, never retried.
	TagIOFailure = goerr.NewTag("io_failure")
)
