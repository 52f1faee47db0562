// Package provider contains the adapters that fetch raw payloads from
// external content providers and normalize them into the canonical model.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contentsearch/internal/domain"
)

// Provider is the adapter contract: one outbound fetch per call, mapped to
// canonical Content. A transport or decode failure fails the whole call.
type Provider interface {
	Name() string
	FetchAll(ctx context.Context) ([]domain.Content, error)
}

// FetchError wraps a failed provider fetch so callers can attribute the
// failure to one provider.
type FetchError struct {
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config holds the HTTP settings shared by all adapters.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// fetchBody issues one GET with retries and returns the response body.
func fetchBody(ctx context.Context, client *http.Client, cfg Config) ([]byte, error) {
	var body []byte
	var err error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		body, err = doRequest(ctx, client, cfg.BaseURL)
		if err == nil {
			return body, nil
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff(cfg, attempt)):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, err)
}

func doRequest(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "ContentSearch/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

func backoff(cfg Config, attempt int) time.Duration {
	d := cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	if d > cfg.MaxBackoff {
		d = cfg.MaxBackoff
	}
	return d
}

// contentTypeFromTag compares a provider-supplied type tag against "video",
// case-insensitively. Anything else maps to article.
func contentTypeFromTag(tag string) domain.ContentType {
	if strings.EqualFold(tag, "video") {
		return domain.TypeVideo
	}
	return domain.TypeArticle
}
