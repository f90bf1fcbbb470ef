package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/theus-ai/omfetch/pkg/domain/interfaces"
	"github.com/theus-ai/omfetch/pkg/domain/model"
	"github.com/theus-ai/omfetch/pkg/domain/types"
)

// Config holds orchestrator configuration
type Config struct {
	TargetTimeout time.Duration // Bound on one navigation run
	CollectAll    bool          // Keep fetching after the first successful file
}

// DefaultConfig returns the orchestrator defaults: 5 minute navigation
// budget, at most one file per target.
func DefaultConfig() Config {
	return Config{
		TargetTimeout: 5 * time.Minute,
	}
}

type downloadUseCase struct {
	navigator interfaces.Navigator
	fetcher   interfaces.Fetcher
	identity  model.IdentityRecord
	cfg       Config
}

// NewDownload creates the download orchestrator
func NewDownload(navigator interfaces.Navigator, fetcher interfaces.Fetcher, identity model.IdentityRecord, cfg Config) interfaces.DownloadUseCase {
	if cfg.TargetTimeout <= 0 {
		cfg.TargetTimeout = DefaultConfig().TargetTimeout
	}
	return &downloadUseCase{
		navigator: navigator,
		fetcher:   fetcher,
		identity:  identity,
		cfg:       cfg,
	}
}

// Run processes targets strictly sequentially. Browser state is never
// shared across targets, so there is no concurrency here by design.
// Exactly one report per target, in input order.
func (uc *downloadUseCase) Run(ctx context.Context, targets []model.DownloadTarget) ([]model.TargetReport, error) {
	logger := ctxlog.From(ctx)

	reports := make([]model.TargetReport, 0, len(targets))
	for i, target := range targets {
		logger.Info("Processing target",
			"index", i+1,
			"total", len(targets),
			"url", target.URL,
		)
		reports = append(reports, uc.processTarget(ctx, target))
	}
	return reports, nil
}

func (uc *downloadUseCase) processTarget(ctx context.Context, target model.DownloadTarget) model.TargetReport {
	logger := ctxlog.From(ctx)
	report := model.TargetReport{Target: target}

	if err := os.MkdirAll(target.DestDir, 0755); err != nil {
		wrapped := goerr.Wrap(err, "failed to create destination directory",
			goerr.V("dir", target.DestDir), goerr.T(types.TagIOFailure))
		logger.Error("Destination directory unavailable", "error", wrapped)
		report.Reason = wrapped.Error()
		return report
	}

	navCtx, cancel := context.WithTimeout(ctx, uc.cfg.TargetTimeout)
	transcript := uc.navigator.Navigate(navCtx, target, uc.identity)
	cancel()

	// Ordered fallback chain: files the browser saved itself win over
	// direct fetches of observed links.
	if files := uc.agentDownloads(transcript); len(files) > 0 {
		report.Succeeded = true
		report.Method = model.MethodAgentDownload
		report.Files = files
		logger.Info("Target succeeded via agent download",
			"url", target.URL,
			"files", len(files),
		)
		return report
	}

	files, attempts := uc.fetchObserved(ctx, target, transcript)
	report.Attempts = attempts
	if len(files) > 0 {
		report.Succeeded = true
		report.Method = model.MethodDirectFetch
		report.Files = files
		logger.Info("Target succeeded via direct fetch",
			"url", target.URL,
			"files", len(files),
		)
		return report
	}

	if len(transcript.Observed) == 0 {
		err := goerr.New("no download link observed",
			goerr.V("url", target.URL), goerr.T(types.TagNoDownloadFound))
		logger.Warn("Target failed", "error", err)
		report.Reason = "no download found (methods tried: agent-download, direct-fetch)"
		return report
	}

	logger.Warn("Target failed: all observed links rejected",
		"url", target.URL,
		"attempted", len(attempts),
	)
	report.Reason = fmt.Sprintf("all %d observed links were rejected", len(attempts))
	return report
}

// agentDownloads returns the files the browser saved during the run,
// honoring the one-file-per-target default.
func (uc *downloadUseCase) agentDownloads(transcript *model.NavigationTranscript) []model.DownloadResult {
	var files []model.DownloadResult
	for _, saved := range transcript.Saved {
		if saved.Path == "" || saved.Size == 0 {
			continue
		}
		files = append(files, model.DownloadResult{Path: saved.Path, Size: saved.Size})
		if !uc.cfg.CollectAll {
			break
		}
	}
	return files
}

// fetchObserved tries each observed link in discovery order. Rejected
// links are recorded and the next one is attempted; there is no retry
// of an individual URL.
func (uc *downloadUseCase) fetchObserved(ctx context.Context, target model.DownloadTarget, transcript *model.NavigationTranscript) ([]model.DownloadResult, []model.AttemptFailure) {
	logger := ctxlog.From(ctx)

	var files []model.DownloadResult
	var attempts []model.AttemptFailure

	for _, link := range transcript.ObservedURLs() {
		result, err := uc.fetcher.Fetch(ctx, link, target.URL, target.DestDir)
		if err != nil {
			logger.Warn("Fetch rejected, trying next link",
				"url", link,
				"error", err,
			)
			attempts = append(attempts, model.AttemptFailure{URL: link, Reason: err.Error()})
			continue
		}
		files = append(files, *result)
		if !uc.cfg.CollectAll {
			break
		}
	}
	return files, attempts
}
