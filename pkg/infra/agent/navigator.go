package agent

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/theus-ai/omfetch/pkg/domain/interfaces"
	"github.com/theus-ai/omfetch/pkg/domain/model"
	"github.com/theus-ai/omfetch/pkg/domain/types"
	"github.com/theus-ai/omfetch/pkg/infra/browser"
	"github.com/theus-ai/omfetch/pkg/infra/scan"
	"github.com/theus-ai/omfetch/pkg/utils/async"
)

//go:embed prompts/navigation_system.md
var systemPrompt string

//go:embed prompts/navigation_user.md
var userPromptTemplate string

// Config holds navigation agent configuration
type Config struct {
	Browser      browser.Config
	MaxSteps     int           // Agent tool-call budget per run
	DownloadWait time.Duration // Grace period for in-flight downloads after the run
}

// DefaultConfig returns the standard setup: 12 agent steps and a
// 5 second download grace period.
func DefaultConfig(downloadDir string) Config {
	return Config{
		Browser:      browser.DefaultConfig(downloadDir),
		MaxSteps:     12,
		DownloadWait: 5 * time.Second,
	}
}

type navigator struct {
	llm        gollem.LLMClient
	scanner    *scan.Scanner
	cfg        Config
	userTmpl   *template.Template
	newSession func(ctx context.Context, cfg browser.Config) (browserSession, error)
}

// NewNavigator creates the production Navigator. llm may be nil, in
// which case runs skip the agent loop and rely on the static page scan
// only.
func NewNavigator(llm gollem.LLMClient, scanner *scan.Scanner, cfg Config) (interfaces.Navigator, error) {
	tmpl, err := template.New("user").Parse(userPromptTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse user prompt template")
	}

	return &navigator{
		llm:      llm,
		scanner:  scanner,
		cfg:      cfg,
		userTmpl: tmpl,
		newSession: func(ctx context.Context, cfg browser.Config) (browserSession, error) {
			return browser.NewSession(ctx, cfg)
		},
	}, nil
}

// Navigate runs one agent-driven browsing session against the target.
// Agent and browser failures are absorbed: the transcript carries
// whatever was observed before the failure, and a page scan backstops
// the run so the fetch fallback always has candidates when the page
// exposes any.
func (n *navigator) Navigate(ctx context.Context, target model.DownloadTarget, identity model.IdentityRecord) *model.NavigationTranscript {
	logger := ctxlog.From(ctx)
	transcript := &model.NavigationTranscript{RunID: uuid.NewString()}

	logger.Info("Starting navigation run",
		"run_id", transcript.RunID,
		"url", target.URL,
	)

	sess, err := n.newSession(ctx, n.cfg.Browser)
	if err != nil {
		logger.Warn("Browser session unavailable, falling back to page scan",
			"error", goerr.Wrap(err, "browser boot failed", goerr.T(types.TagAgentUnavailable)),
		)
		n.scanWithoutBrowser(ctx, target, transcript)
		return transcript
	}
	defer sess.Close()

	observer := sess.Observer()

	if err := sess.Navigate(target.URL); err != nil {
		logger.Warn("Failed to open listing page in browser", "error", err)
		n.scanWithoutBrowser(ctx, target, transcript)
		return transcript
	}

	// Static scan first so candidates exist even if the agent run dies
	n.scanPageHTML(ctx, sess, target, observer)

	if n.llm != nil {
		n.runAgent(ctx, sess, target, identity, transcript)
	} else {
		logger.Info("No LLM configured, skipping agent navigation", "run_id", transcript.RunID)
	}

	observer.WaitDownloads(ctx, n.cfg.DownloadWait)

	transcript.Observed = observer.Links()
	transcript.Saved = observer.Saved()

	logger.Info("Navigation run finished",
		"run_id", transcript.RunID,
		"observed", len(transcript.Observed),
		"saved", len(transcript.Saved),
		"steps", len(transcript.Steps),
	)
	return transcript
}

// runAgent executes the gollem tool loop. The loop runs detached so the
// per-target deadline can abandon it; links observed before abandonment
// still reach the caller.
func (n *navigator) runAgent(ctx context.Context, sess browserSession, target model.DownloadTarget, identity model.IdentityRecord, transcript *model.NavigationTranscript) {
	logger := ctxlog.From(ctx)

	kit := &toolkit{
		sess:     sess,
		identity: identity,
	}

	prompt, err := n.buildInstruction(target, identity)
	if err != nil {
		logger.Warn("Failed to build agent instruction", "error", err)
		return
	}

	llmAgent := gollem.New(n.llm,
		gollem.WithTools(kit.tools()...),
		gollem.WithSystemPrompt(systemPrompt),
		gollem.WithLoopLimit(n.cfg.MaxSteps),
	)

	done := make(chan error, 1)
	async.Dispatch(ctx, func(runCtx context.Context) error {
		_, execErr := llmAgent.Execute(runCtx, gollem.Text(prompt))
		done <- execErr
		return nil
	})

	select {
	case err := <-done:
		if err != nil {
			logger.Warn("Agent run failed, continuing with observed links",
				"run_id", transcript.RunID,
				"error", goerr.Wrap(err, "agent execution failed", goerr.T(types.TagAgentUnavailable)),
			)
		}
	case <-ctx.Done():
		logger.Warn("Agent run abandoned by deadline",
			"run_id", transcript.RunID,
			"error", ctx.Err(),
		)
	}

	transcript.Steps = kit.Steps()
}

func (n *navigator) buildInstruction(target model.DownloadTarget, identity model.IdentityRecord) (string, error) {
	var buf bytes.Buffer
	err := n.userTmpl.Execute(&buf, map[string]any{
		"URL":      target.URL,
		"Phrases":  model.DocumentPhrases,
		"Identity": identity,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render instruction template")
	}
	return buf.String(), nil
}

// scanPageHTML extracts candidate links from the DOM the browser already
// rendered and records them on the observer stream.
func (n *navigator) scanPageHTML(ctx context.Context, sess browserSession, target model.DownloadTarget, observer *browser.Observer) {
	logger := ctxlog.From(ctx)

	html, err := sess.HTML()
	if err != nil {
		logger.Warn("Failed to capture page HTML for scan", "error", err)
		return
	}

	links, err := n.scanner.Extract(target.URL, strings.NewReader(html))
	if err != nil {
		logger.Warn("Page scan failed", "error", err)
		return
	}

	for _, link := range links {
		observer.Record(link, model.LinkSourcePageScan)
	}
	if len(links) > 0 {
		logger.Debug("Page scan found candidate links", "count", len(links))
	}
}

// scanWithoutBrowser fetches the page over plain HTTP when no browser
// session exists at all.
func (n *navigator) scanWithoutBrowser(ctx context.Context, target model.DownloadTarget, transcript *model.NavigationTranscript) {
	logger := ctxlog.From(ctx)

	links, err := n.scanner.ScanPage(ctx, target.URL)
	if err != nil {
		logger.Warn("Fallback page scan failed", "error", err)
		return
	}

	now := time.Now()
	for _, link := range links {
		transcript.Observed = append(transcript.Observed, model.ObservedLink{
			URL:    link,
			Source: model.LinkSourcePageScan,
			At:     now,
		})
	}
}
