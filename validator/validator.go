// Package validator checks a URL for well-formedness and reachability before
// the pipeline spends anything on it. The probe is a HEAD request; the body
// is fetched later by the content extractor.
package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMalformedURL reports a URL that fails the syntactic checks.
var ErrMalformedURL = errors.New("malformed url")

// ErrUnreachable reports a URL that failed the reachability probe.
var ErrUnreachable = errors.New("url unreachable")

// Hosts never fetched, regardless of scheme.
var excludedHosts = []string{"localhost", "127.0.0.1", "0.0.0.0", "[::1]"}

// Validator performs URL validation with a bounded reachability probe.
type Validator struct {
	client *http.Client
}

// New creates a Validator whose probe is bounded by timeout.
func New(timeout time.Duration) *Validator {
	return &Validator{
		client: &http.Client{Timeout: timeout},
	}
}

// Validate checks syntax first, then probes the URL with a HEAD request.
// Returns ErrMalformedURL or ErrUnreachable (wrapped with detail) on failure.
func (v *Validator) Validate(ctx context.Context, rawURL string) error {
	if err := checkFormat(rawURL); err != nil {
		return err
	}
	if err := v.probe(ctx, rawURL); err != nil {
		return err
	}
	slog.Debug("url validated", slog.String("url", rawURL))
	return nil
}

func checkFormat(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty URL", ErrMalformedURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: URL must start with http:// or https://", ErrMalformedURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing domain", ErrMalformedURL)
	}

	host := strings.ToLower(parsed.Host)
	for _, excluded := range excludedHosts {
		if strings.Contains(host, excluded) {
			return fmt.Errorf("%w: local URLs are not supported", ErrMalformedURL)
		}
	}

	return nil
}

func (v *Validator) probe(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: request timed out", ErrUnreachable)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	// 2xx and 3xx both count as reachable.
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	return nil
}

const userAgent = "BlogForge/1.0"
