package interfaces

import (
	"context"

	"github.com/theus-ai/omfetch/pkg/domain/model"
)

// Navigator drives a browser session toward the target's document and
// reports everything it observed. The production implementation wraps an
// LLM browsing agent; tests supply a scripted transcript.
//
// Navigate must not propagate agent failures: a broken or timed-out agent
// run yields a partial (possibly empty) transcript so the orchestrator
// can fall through to direct fetches of whatever was already observed.
type Navigator interface {
	Navigate(ctx context.Context, target model.DownloadTarget, identity model.IdentityRecord) *model.NavigationTranscript
}
