// Package export downloads the spreadsheet through its public export URLs.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"menuboard/internal"
	"menuboard/internal/config"
)

const docsBase = "https://docs.google.com/spreadsheets/d/"

type Client struct {
	cfg         config.Config
	httpClient  *http.Client
	limiter     *RateLimiter
	backoffBase time.Duration
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.FetchTimeout},
		limiter:     NewRateLimiter(cfg.FetchRateLimitRPS),
		backoffBase: 250 * time.Millisecond,
	}
}

// ExportURL is SHEET_EXPORT_URL when set, otherwise the URL the sheet host
// serves for SHEET_ID in the configured format.
func ExportURL(cfg config.Config) (string, error) {
	if u := strings.TrimSpace(cfg.SheetExportURL); u != "" {
		return u, nil
	}
	if err := cfg.Require("SHEET_ID or SHEET_EXPORT_URL", cfg.SheetID); err != nil {
		return "", err
	}
	base := docsBase + url.PathEscape(cfg.SheetID)
	switch cfg.SheetFormat {
	case "csv":
		return base + "/export?format=csv&gid=" + url.QueryEscape(cfg.SheetGID), nil
	case "xlsx":
		return base + "/export?format=xlsx", nil
	case "html":
		return base + "/pubhtml?gid=" + url.QueryEscape(cfg.SheetGID) + "&single=true", nil
	case "gviz":
		q := url.Values{}
		q.Set("sheet", cfg.SheetName)
		q.Set("tq", "select *")
		return base + "/gviz/tq?" + q.Encode(), nil
	default:
		return "", fmt.Errorf("format %q has no export URL", cfg.SheetFormat)
	}
}

// FetchExport downloads the export once, retrying throttling and server
// errors with exponential backoff. Failures are wrapped in internal.ErrFetch.
func (c *Client) FetchExport(ctx context.Context) (internal.SheetExport, error) {
	target, err := ExportURL(c.cfg)
	if err != nil {
		return internal.SheetExport{}, fmt.Errorf("%w: %v", internal.ErrFetch, err)
	}
	body, err := c.get(ctx, target)
	if err != nil {
		return internal.SheetExport{}, fmt.Errorf("%w: %v", internal.ErrFetch, err)
	}
	return internal.SheetExport{
		Provider:  "export",
		Format:    c.cfg.SheetFormat,
		Source:    target,
		Body:      body,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	attempts := c.cfg.FetchRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cache-Control", "no-store")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				backoff := c.backoffBase*time.Duration(1<<(attempt-1)) + time.Duration(rand.Intn(100))*time.Millisecond
				if err := sleepCtx(ctx, backoff); err != nil {
					return nil, err
				}
				lastErr = fmt.Errorf("sheet export status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("sheet export error: status=%d body=%s", resp.StatusCode, snippet(body))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("sheet export request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "…"
	}
	return string(body)
}
