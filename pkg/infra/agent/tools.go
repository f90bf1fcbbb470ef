package agent

import (
	"context"
	"sync"

	"github.com/m-mizutani/gollem"
	"github.com/theus-ai/omfetch/pkg/domain/model"
	"github.com/theus-ai/omfetch/pkg/infra/browser"
)

// browserSession is the subset of the browser session the agent tools
// need. Satisfied by *browser.Session in production and by fakes in
// tests.
type browserSession interface {
	Navigate(url string) error
	ReadPage() (*browser.PageView, error)
	ClickText(needle string) (bool, error)
	Scroll(pages float64) error
	FillLeadForm(identity model.IdentityRecord) (int, error)
	HTML() (string, error)
	Observer() *browser.Observer
	Close()
}

// toolkit binds the browser tools to one navigation run. The step log
// is guarded because tools run on the detached agent goroutine while
// the navigator may read it after a deadline abandonment.
type toolkit struct {
	sess     browserSession
	identity model.IdentityRecord

	mu    sync.Mutex
	steps []string
	done  bool
}

func (t *toolkit) record(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, step)
}

func (t *toolkit) markDone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
}

// Steps returns a copy of the action log
func (t *toolkit) Steps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.steps))
	copy(out, t.steps)
	return out
}

func (t *toolkit) tools() []gollem.Tool {
	return []gollem.Tool{
		&openPageTool{t},
		&readPageTool{t},
		&clickTool{t},
		&scrollTool{t},
		&fillLeadFormTool{t},
		&finishTool{t},
	}
}

type openPageTool struct{ kit *toolkit }

func (x *openPageTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "open_page",
		Description: "Navigate the browser to a URL and wait for the page to settle.",
		Parameters: map[string]*gollem.Parameter{
			"url": {
				Type:        gollem.TypeString,
				Description: "Absolute URL to open",
			},
		},
		Required: []string{"url"},
	}
}

func (x *openPageTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	url, _ := args["url"].(string)
	x.kit.record("open_page: " + url)
	if err := x.kit.sess.Navigate(url); err != nil {
		return nil, err
	}
	return map[string]any{"status": "opened", "url": url}, nil
}

type readPageTool struct{ kit *toolkit }

func (x *readPageTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "read_page",
		Description: "Return the current page title, URL, and a numbered list of clickable elements (links and buttons) with their text.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (x *readPageTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	view, err := x.kit.sess.ReadPage()
	if err != nil {
		return nil, err
	}
	x.kit.record("read_page: " + view.URL)
	return map[string]any{
		"url":        view.URL,
		"title":      view.Title,
		"clickables": browser.FormatClickables(view.Clickables),
	}, nil
}

type clickTool struct{ kit *toolkit }

func (x *clickTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "click",
		Description: "Click the first visible link or button whose text contains the given phrase (case-insensitive). Click a download button at most once.",
		Parameters: map[string]*gollem.Parameter{
			"text": {
				Type:        gollem.TypeString,
				Description: "Visible text of the element to click",
			},
		},
		Required: []string{"text"},
	}
}

func (x *clickTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	text, _ := args["text"].(string)
	x.kit.record("click: " + text)
	clicked, err := x.kit.sess.ClickText(text)
	if err != nil {
		return nil, err
	}
	if !clicked {
		return map[string]any{"status": "not_found", "text": text}, nil
	}
	return map[string]any{"status": "clicked", "text": text}, nil
}

type scrollTool struct{ kit *toolkit }

func (x *scrollTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "scroll",
		Description: "Scroll the page vertically. Use 0.5 to scroll half a page at a time so download buttons are not missed.",
		Parameters: map[string]*gollem.Parameter{
			"pages": {
				Type:        gollem.TypeNumber,
				Description: "Number of viewport heights to scroll; negative scrolls up",
			},
		},
		Required: []string{"pages"},
	}
}

func (x *scrollTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	pages, ok := args["pages"].(float64)
	if !ok {
		pages = 0.5
	}
	x.kit.record("scroll")
	if err := x.kit.sess.Scroll(pages); err != nil {
		return nil, err
	}
	return map[string]any{"status": "scrolled"}, nil
}

type fillLeadFormTool struct{ kit *toolkit }

func (x *fillLeadFormTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "fill_lead_form",
		Description: "Fill any visible lead-capture form with the configured contact details and submit it. Use when a form gates the download.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (x *fillLeadFormTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	filled, err := x.kit.sess.FillLeadForm(x.kit.identity)
	if err != nil {
		return nil, err
	}
	x.kit.record("fill_lead_form")
	return map[string]any{"fields_filled": filled}, nil
}

type finishTool struct{ kit *toolkit }

func (x *finishTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "finish",
		Description: "Declare the task complete. Call this once right after clicking the final download button.",
		Parameters: map[string]*gollem.Parameter{
			"reason": {
				Type:        gollem.TypeString,
				Description: "Short explanation of why the task is complete",
			},
		},
	}
}

func (x *finishTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	reason, _ := args["reason"].(string)
	x.kit.markDone()
	x.kit.record("finish: " + reason)
	return map[string]any{"status": "done"}, nil
}
