// Package download fetches show lists over HTTP with retries and mirrors.
package download

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/logging"
)

// Fetcher downloads a list from the first URL that succeeds.
type Fetcher interface {
	Fetch(ctx context.Context, urls []string) ([]byte, error)
}

// Compile-time interface check.
var _ Fetcher = (*Client)(nil)

// Client is an HTTP list downloader.
type Client struct {
	http      *http.Client
	userAgent string
	attempts  uint
	backoff   time.Duration
	maxSize   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithRetry sets the attempts per URL and the base backoff.
func WithRetry(attempts uint, backoff time.Duration) Option {
	return func(cl *Client) {
		cl.attempts = max(attempts, 1)
		cl.backoff = backoff
	}
}

// WithMaxSize limits the accepted body size.
func WithMaxSize(n int64) Option {
	return func(cl *Client) {
		cl.maxSize = n
	}
}

// New returns a Client with default timeouts and retries.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		userAgent: constants.DefaultUserAgent,
		attempts:  constants.MaxRetries,
		backoff:   constants.RetryBackoff,
		maxSize:   constants.MaxFeedSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch tries urls in order and returns the first body downloaded.
// When every URL fails the errors are joined.
func (c *Client) Fetch(ctx context.Context, urls []string) ([]byte, error) {
	if len(urls) == 0 {
		return nil, errors.NewValidationError("urls", urls, "at least one URL is required")
	}

	logger := logging.FromContext(ctx)

	var errs []error
	for _, url := range urls {
		data, err := c.fetchOne(ctx, url)
		if err == nil {
			logger.Debug().Str("url", url).Int("bytes", len(data)).Msg("Downloaded list")
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn().Err(err).Str("url", url).Msg("List download failed, trying next mirror")
		errs = append(errs, err)
	}
	return nil, stderrors.Join(errs...)
}

func (c *Client) fetchOne(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			return c.get(ctx, url)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.backoff),
		retry.MaxDelay(constants.MaxRetryBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logging.FromContext(ctx).Debug().
				Uint("attempt", n+1).
				Str("url", url).
				Err(err).
				Msg("Retrying list download")
		}),
	)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(errors.NewValidationError("url", url, err.Error()))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapAPI(url, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errors.NewAPIError(url, resp.StatusCode, http.StatusText(resp.StatusCode))
		if !apiErr.Temporary() {
			return nil, retry.Unrecoverable(apiErr)
		}
		return nil, apiErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, errors.WrapAPI(url, resp.StatusCode, err)
	}
	if int64(len(data)) > c.maxSize {
		return nil, retry.Unrecoverable(errors.NewResourceError("download", "list", url,
			fmt.Errorf("body exceeds %d bytes", c.maxSize)))
	}
	return data, nil
}
