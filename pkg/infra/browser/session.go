package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/theus-ai/omfetch/pkg/domain/model"
)

// Config holds browser session configuration
type Config struct {
	Headless       bool
	ViewportWidth  int64
	ViewportHeight int64
	DownloadDir    string        // Where browser-initiated downloads land
	SettleTime     time.Duration // Pause after each mutating action
}

// DefaultConfig returns the standard session configuration: visible
// browser, fixed 1280x1024 viewport, 3s settle.
func DefaultConfig(downloadDir string) Config {
	return Config{
		Headless:       false,
		ViewportWidth:  1280,
		ViewportHeight: 1024,
		DownloadDir:    downloadDir,
		SettleTime:     3 * time.Second,
	}
}

// Session owns one Chrome instance and the PDF URL observer attached to
// it. One session per target; never shared across concurrent runs.
type Session struct {
	cfg         Config
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
	ctx         context.Context
	observer    *Observer
}

// NewSession boots a browser, attaches the observer, and configures
// download behavior so downloads land in cfg.DownloadDir with events on.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(int(cfg.ViewportWidth), int(cfg.ViewportHeight)),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:         cfg,
		allocCancel: allocCancel,
		ctxCancel:   browserCancel,
		ctx:         browserCtx,
		observer:    NewObserver(cfg.DownloadDir),
	}

	chromedp.ListenTarget(browserCtx, s.observer.handleEvent)

	if err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.EmulateViewport(cfg.ViewportWidth, cfg.ViewportHeight),
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(cfg.DownloadDir).
			WithEventsEnabled(true),
	); err != nil {
		browserCancel()
		allocCancel()
		return nil, goerr.Wrap(err, "failed to start browser")
	}

	// Download and new-tab events arrive at browser scope, not target
	// scope. The listener can only be attached once the browser is up.
	chromedp.ListenBrowser(browserCtx, s.observer.handleEvent)

	return s, nil
}

// Observer returns the PDF URL observer bound to this session
func (s *Session) Observer() *Observer {
	return s.observer
}

// Close shuts down the browser and releases the allocator
func (s *Session) Close() {
	s.ctxCancel()
	s.allocCancel()
}

func (s *Session) settle() {
	if s.cfg.SettleTime > 0 {
		time.Sleep(s.cfg.SettleTime)
	}
}

// Navigate opens url in the main tab and waits for it to settle
func (s *Session) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return goerr.Wrap(err, "failed to navigate", goerr.V("url", url))
	}
	s.settle()
	return nil
}

// Clickable is one element the agent may click
type Clickable struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageView is what the agent sees of the current page
type PageView struct {
	URL        string
	Title      string
	Clickables []Clickable
}

const censusJS = `(() => {
	const out = [];
	const els = document.querySelectorAll('a, button, input[type="submit"], [role="button"]');
	for (const el of els) {
		if (out.length >= 60) break;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) continue;
		const text = (el.innerText || el.value || el.getAttribute('aria-label') || '').trim().replace(/\s+/g, ' ');
		const href = el.href || '';
		if (!text && !href) continue;
		out.push({tag: el.tagName.toLowerCase(), text: text.slice(0, 120), href: href});
	}
	return out;
})()`

// ReadPage returns the current URL, title, and a census of clickable
// elements so the agent can pick a download affordance.
func (s *Session) ReadPage() (*PageView, error) {
	var view PageView
	if err := chromedp.Run(s.ctx,
		chromedp.Location(&view.URL),
		chromedp.Title(&view.Title),
		chromedp.Evaluate(censusJS, &view.Clickables),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to read page")
	}
	return &view, nil
}

const clickJS = `((needle) => {
	needle = needle.toLowerCase();
	const els = document.querySelectorAll('a, button, input[type="submit"], [role="button"]');
	for (const el of els) {
		const text = (el.innerText || el.value || el.getAttribute('aria-label') || '').trim().toLowerCase();
		if (text && text.includes(needle)) {
			el.scrollIntoView({block: 'center'});
			el.click();
			return true;
		}
	}
	return false;
})(%s)`

// ClickText clicks the first visible element whose text contains needle
// (case-insensitive). Returns false if nothing matched.
func (s *Session) ClickText(needle string) (bool, error) {
	var clicked bool
	expr := fmt.Sprintf(clickJS, strconv.Quote(needle))
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, goerr.Wrap(err, "failed to click element", goerr.V("text", needle))
	}
	if clicked {
		s.settle()
	}
	return clicked, nil
}

// Scroll moves the viewport by the given number of pages (0.5 = half a
// page). Negative values scroll up.
func (s *Session) Scroll(pages float64) error {
	expr := fmt.Sprintf("window.scrollBy(0, window.innerHeight * %f)", pages)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, nil)); err != nil {
		return goerr.Wrap(err, "failed to scroll")
	}
	s.settle()
	return nil
}

const fillFormJS = `((ident) => {
	const fill = (el, value) => {
		el.value = value;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
	};
	const hint = (el) => {
		const label = el.labels && el.labels.length ? el.labels[0].innerText : '';
		return [el.name, el.id, el.placeholder, el.getAttribute('autocomplete'), label]
			.join(' ').toLowerCase();
	};
	let filled = 0;
	const inputs = document.querySelectorAll('input[type="text"], input[type="email"], input[type="tel"], input:not([type]), textarea');
	for (const el of inputs) {
		const h = hint(el);
		if (/e-?mail/.test(h)) { fill(el, ident.email); filled++; }
		else if (/phone|tel|mobile/.test(h)) { fill(el, ident.phone); filled++; }
		else if (/company|organi[sz]ation|firm/.test(h)) { fill(el, ident.company); filled++; }
		else if (/first.?name/.test(h)) { fill(el, ident.name.split(' ')[0]); filled++; }
		else if (/last.?name|surname/.test(h)) { fill(el, ident.name.split(' ').slice(1).join(' ') || ident.name); filled++; }
		else if (/name/.test(h)) { fill(el, ident.name); filled++; }
	}
	if (filled > 0) {
		const buttons = document.querySelectorAll('button, input[type="submit"]');
		for (const el of buttons) {
			const text = (el.innerText || el.value || '').toLowerCase();
			if (el.type === 'submit' || /submit|download|send|view|get|access/.test(text)) {
				el.click();
				break;
			}
		}
	}
	return filled;
})(%s)`

// FillLeadForm autofills any visible lead-capture form with the identity
// and submits it. Returns the number of fields filled.
func (s *Session) FillLeadForm(identity model.IdentityRecord) (int, error) {
	ident := fmt.Sprintf(`{name: %s, email: %s, phone: %s, company: %s}`,
		strconv.Quote(identity.Name),
		strconv.Quote(identity.Email),
		strconv.Quote(identity.Phone),
		strconv.Quote(identity.Company),
	)
	var filled int
	expr := fmt.Sprintf(fillFormJS, ident)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, &filled)); err != nil {
		return 0, goerr.Wrap(err, "failed to fill lead form")
	}
	if filled > 0 {
		s.settle()
	}
	return filled, nil
}

// HTML returns the serialized DOM of the current page
func (s *Session) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", goerr.Wrap(err, "failed to capture page HTML")
	}
	return html, nil
}

// FormatClickables renders a census for inclusion in an agent prompt
func FormatClickables(items []Clickable) string {
	var sb strings.Builder
	for i, c := range items {
		fmt.Fprintf(&sb, "%d. <%s> %q", i+1, c.Tag, c.Text)
		if c.Href != "" {
			fmt.Fprintf(&sb, " -> %s", c.Href)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
