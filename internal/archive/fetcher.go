package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultProxyURL is the CORS-bypass endpoint; the encoded target URL is appended.
const DefaultProxyURL = "https://api.allorigins.win/raw?url="

// DefaultMaxBytes caps a proxied response body.
const DefaultMaxBytes int64 = 10 << 20

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ProxyFetcher fetches pages through an HTTP proxy endpoint.
type ProxyFetcher struct {
	endpoint string
	maxBytes int64
	client   *http.Client
	log      logrus.FieldLogger
}

// NewProxyFetcher builds a fetcher for endpoint. An empty endpoint uses
// DefaultProxyURL and a non-positive maxBytes uses DefaultMaxBytes.
func NewProxyFetcher(endpoint string, timeout time.Duration, maxBytes int64, logger logrus.FieldLogger) *ProxyFetcher {
	if endpoint == "" {
		endpoint = DefaultProxyURL
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &ProxyFetcher{
		endpoint: endpoint,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: timeout},
		log:      logger.WithField("component", "proxy_fetcher"),
	}
}

// Fetch GETs the proxied page. A non-2xx proxy response is a classified
// proxy-status failure; transport errors are network failures.
func (f *ProxyFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	log := f.log.WithField("url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+url.QueryEscape(pageURL), http.NoBody)
	if err != nil {
		return "", &Error{Reason: ReasonNetwork, Message: "Could not build the archive request.", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("Archive proxy request failed")
		return "", &Error{Reason: ReasonNetwork, Message: "Could not reach the archiving proxy.", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Warn("Archive proxy returned non-success status")
		return "", failure(ReasonProxyStatus, "Proxy service returned status %d.", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", &Error{Reason: ReasonNetwork, Message: "Failed to read the archive response.", Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		log.WithField("max_bytes", f.maxBytes).Warn("Archive proxy response exceeds the size limit")
		return "", failure(ReasonTooLarge, "The page is larger than the %d byte archive limit.", f.maxBytes)
	}
	log.WithField("bytes", len(body)).Debug("Archive proxy response received")
	return string(body), nil
}
