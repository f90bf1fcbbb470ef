package interfaces

import (
	"context"

	"github.com/theus-ai/omfetch/pkg/domain/model"
)

// DownloadUseCase defines the top-level download workflow
type DownloadUseCase interface {
	// Run processes targets strictly sequentially and returns exactly one
	// report per target, in input order. The returned error is non-nil
	// only for invariant violations, not per-target failures.
	Run(ctx context.Context, targets []model.DownloadTarget) ([]model.TargetReport, error)
}
