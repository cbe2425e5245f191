package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	cerrors "sjsage522/schoolcrawler/pkg/errors"
)

// navigationTimeout bounds a single page load inside the browser.
const navigationTimeout = 45 * time.Second

// ChromeSource loads pages through a headless Chrome instance, for the
// case where the catalog renders its listing client side. The browser is
// started lazily on the first navigation; a startup failure is sticky and
// reported as fatal on every call.
type ChromeSource struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	started       bool
	startErr      error
}

// NewChromeSource creates a Chrome source. With a websocket URL it attaches
// to a remote browser, otherwise it launches a local headless one.
func NewChromeSource(wsURL string) *ChromeSource {
	var allocCtx context.Context
	var allocCancel context.CancelFunc

	if wsURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), wsURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	return &ChromeSource{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// ensureBrowser starts the browser once and remembers the outcome
func (s *ChromeSource) ensureBrowser() error {
	if s.started {
		return s.startErr
	}
	s.started = true

	s.browserCtx, s.browserCancel = chromedp.NewContext(s.allocCtx)
	if err := chromedp.Run(s.browserCtx); err != nil {
		s.startErr = cerrors.NewFatal("chrome", "failed to start browser", err)
	}

	return s.startErr
}

// Navigate loads the page in a fresh tab and parses the rendered HTML
func (s *ChromeSource) Navigate(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ensureBrowser(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	runCtx, cancel := context.WithTimeout(tabCtx, navigationTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, cerrors.NewParsing(pageURL, "failed to parse rendered HTML", err)
	}

	return doc, nil
}

// Close shuts down the browser and releases the allocator
func (s *ChromeSource) Close() error {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}
