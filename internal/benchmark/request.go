package benchmark

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/chemiclast/rasorite/internal/errors"
)

// doRequest performs a single GET against the base URL.
func (c *Client) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	fullURL := c.baseURL
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, errors.New().Wrap(ErrRequest, err).WithMessage("create request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", c.cookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.New().Wrap(ErrRequest, err).WithMessage("do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New().Wrap(ErrRequest, err).WithMessage("read response")
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// doWithRetry repeats retryable failures with jittered exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// backoff * (0.5 to 1.5)
			jitter := backoff / 2
			if backoff > 0 {
				jitter += time.Duration(rand.Int63n(int64(backoff)))
			}
			c.logger.Debug().
				Int("attempt", attempt).
				Dur("backoff", jitter).
				Msg("Retrying benchmark request")

			select {
			case <-ctx.Done():
				return nil, errors.New().Wrap(ErrRequest, ctx.Err())
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, query)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return nil, err
		}
		if !statusErr.IsRetryable() {
			return nil, errors.New().Wrap(ErrStatus, statusErr)
		}
	}

	return nil, errors.New().Wrap(ErrRetriesExhaust, lastErr)
}
