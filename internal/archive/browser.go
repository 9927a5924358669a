package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// MetadataScraper reads the title and description of a page.
type MetadataScraper interface {
	ScrapeMetadata(ctx context.Context, pageURL string) (title string, description string, err error)
}

// BrowserFetcher renders pages in a headless browser using rod. It serves
// both as an archive Fetcher and as a MetadataScraper.
type BrowserFetcher struct {
	log     logrus.FieldLogger
	timeout time.Duration
}

// NewBrowserFetcher creates a browser-backed fetcher. A new browser is
// launched for every page.
func NewBrowserFetcher(timeout time.Duration, logger logrus.FieldLogger) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{
		log:     logger.WithField("component", "browser_fetcher"),
		timeout: timeout,
	}
}

// withPage opens pageURL in a fresh browser, waits for it to load and hands
// the page to fn. Browser and page are always closed.
func (f *BrowserFetcher) withPage(ctx context.Context, pageURL string, fn func(*rod.Page) error) error {
	log := f.log.WithField("url", pageURL)

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return &Error{Reason: ReasonNetwork, Message: "No browser is available for archiving.", Err: errors.New("rod browser dependency not found")}
	}
	l := launcher.New().Bin(path)
	u, err := l.Launch()
	if err != nil {
		return &Error{Reason: ReasonNetwork, Message: "Could not start the archiving browser.", Err: err}
	}
	browser, err := connect(u, l, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod browser instance")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return &Error{Reason: ReasonNetwork, Message: "Could not open the page.", Err: err}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Error closing rod page")
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(pageCtx)

	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Page load timed out")
			return &Error{Reason: ReasonNetwork, Message: "The page took too long to load.", Err: pageCtx.Err()}
		}
		log.WithError(err).Error("Failed to wait for page load")
		return &Error{Reason: ReasonNetwork, Message: "The page failed to load.", Err: err}
	}
	return fn(page)
}

// Fetch returns the rendered HTML of pageURL.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var html string
	err := f.withPage(ctx, pageURL, func(page *rod.Page) error {
		var err error
		html, err = page.HTML()
		if err != nil {
			return &Error{Reason: ReasonNetwork, Message: "Failed to read the page content.", Err: fmt.Errorf("page html: %w", err)}
		}
		return nil
	})
	return html, err
}

// process is the launched browser process.
type process interface {
	Kill()
	Cleanup()
}

// connect attaches to the browser at controlURL. The process is killed when
// the connection fails, since nothing else will close it.
func connect(controlURL string, proc process, log logrus.FieldLogger) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		proc.Kill()
		proc.Cleanup()
		return nil, &Error{Reason: ReasonNetwork, Message: "Could not start the archiving browser.", Err: err}
	}
	return browser, nil
}

// ScrapeMetadata fetches the title and description of pageURL. A missing
// title or description yields an empty string rather than an error.
func (f *BrowserFetcher) ScrapeMetadata(ctx context.Context, pageURL string) (title string, description string, err error) {
	log := f.log.WithField("url", pageURL)
	err = f.withPage(ctx, pageURL, func(page *rod.Page) error {
		if ok, el, err := page.Has("title"); err == nil && ok {
			if text, err := el.Text(); err == nil {
				title = strings.TrimSpace(text)
			}
		} else {
			log.Debug("Could not find title element")
		}

		for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
			ok, el, err := page.Has(selector)
			if err != nil || !ok {
				continue
			}
			content, err := el.Attribute("content")
			if err == nil && content != nil && strings.TrimSpace(*content) != "" {
				description = strings.TrimSpace(*content)
				break
			}
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	log.WithField("title", title).Debug("Metadata scraped")
	return title, description, nil
}
