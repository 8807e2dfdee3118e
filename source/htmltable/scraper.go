package htmltable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hupe1980/statclust/record"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("htmltable: GET %s: status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Temporary reports whether the request may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Scraper fetches a page and extracts records from its stats table.
type Scraper struct {
	url  string
	opts options
}

// New creates a Scraper for url.
func New(url string, opts ...Option) *Scraper {
	return &Scraper{url: url, opts: applyOptions(opts)}
}

// URL returns the scraped page.
func (s *Scraper) URL() string {
	return s.url
}

// Load fetches the page and parses it. It implements source.Loader.
func (s *Scraper) Load(ctx context.Context) ([]record.Record, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return parse(bytes.NewReader(body), s.opts)
}

func (s *Scraper) fetch(ctx context.Context) ([]byte, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.initialInterval
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, s.opts.maxRetries), ctx)

	var body []byte
	op := func() error {
		b, err := s.get(ctx)
		if err != nil {
			return err
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.opts.logger.WarnContext(ctx, "fetch failed, retrying", "url", s.url, "error", err, "wait", wait)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Scraper) get(ctx context.Context) ([]byte, error) {
	if err := s.opts.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", s.opts.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.opts.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		serr := &StatusError{URL: s.url, Code: resp.StatusCode}
		if serr.Temporary() {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	return body, nil
}
