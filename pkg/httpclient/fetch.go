package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"stream-resolver-go/pkg/urlutil"
)

// DefaultUserAgent is sent when the caller supplies no User-Agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// RetryPolicy is the single retry convention applied at the fetch boundary.
// Attempts counts total tries, not extra retries.
type RetryPolicy struct {
	Attempts          int
	Delay             time.Duration
	PerAttemptTimeout time.Duration
}

// DefaultRetryPolicy mirrors the convention used throughout the scraper
// layer this library serves: 3 tries, 2s apart, 15s each.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:          3,
		Delay:             2 * time.Second,
		PerAttemptTimeout: 15 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.PerAttemptTimeout <= 0 {
		p.PerAttemptTimeout = 15 * time.Second
	}
	return p
}

// BuildHeaders derives the request header set for a manifest or variant
// fetch from a caller-supplied base. Accept is always forced; a non-empty
// referer additionally sets Referer and an https Origin for its host.
func BuildHeaders(base map[string]string, referer string) map[string]string {
	headers := make(map[string]string, len(base)+3)
	for k, v := range base {
		headers[k] = v
	}
	headers["Accept"] = "*/*"
	if referer != "" {
		headers["Referer"] = referer
		if host := urlutil.Host(referer); host != "" {
			headers["Origin"] = "https://" + host
		}
	}
	return headers
}

// FetchText fetches a URL and returns its body as text together with the
// final URL after redirects. The configured retry policy is applied here so
// call sites never carry their own retry loops.
func (c *Client) FetchText(ctx context.Context, urlStr string, headers map[string]string) (string, string, error) {
	policy := c.retry.normalized()

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if attempt > 1 {
			c.log.Debug("retrying fetch", "url", urlStr, "attempt", attempt)
			select {
			case <-ctx.Done():
				return "", "", ctx.Err()
			case <-time.After(policy.Delay):
			}
		}

		body, finalURL, err := c.fetchOnce(ctx, urlStr, headers, policy.PerAttemptTimeout)
		if err == nil {
			return body, finalURL, nil
		}
		lastErr = err
	}

	return "", "", fmt.Errorf("fetch %s failed after %d attempts: %w", urlStr, policy.Attempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, urlStr string, headers map[string]string, timeout time.Duration) (string, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read body: %w", err)
	}

	// Request.URL reflects the last redirect followed by the client.
	finalURL := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return string(body), finalURL, nil
}
