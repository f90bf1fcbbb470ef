package interfaces

import (
	"context"

	"github.com/theus-ai/omfetch/pkg/domain/model"
)

// Fetcher materializes a single URL to disk
type Fetcher interface {
	// Fetch downloads url into destDir. referer is the listing page the
	// URL was discovered on, sent to avoid origin-based rejection.
	// Returns an error tagged types.TagFetchRejected for non-2xx or
	// non-PDF responses, types.TagIOFailure for write failures.
	Fetch(ctx context.Context, url, referer, destDir string) (*model.DownloadResult, error)
}
