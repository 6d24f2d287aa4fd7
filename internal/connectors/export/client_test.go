package export

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"menuboard/internal"
	"menuboard/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() config.Config {
	return config.Config{
		SheetFormat:       "csv",
		SheetID:           "abc123",
		SheetGID:          "0",
		SheetName:         "Menu",
		FetchRateLimitRPS: 1000,
		FetchRetries:      3,
		FetchTimeout:      time.Second,
	}
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestExportURL(t *testing.T) {
	cfg := testConfig()
	cases := map[string]string{
		"csv":  "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=0",
		"xlsx": "https://docs.google.com/spreadsheets/d/abc123/export?format=xlsx",
		"html": "https://docs.google.com/spreadsheets/d/abc123/pubhtml?gid=0&single=true",
		"gviz": "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?sheet=Menu&tq=select+%2A",
	}
	for format, want := range cases {
		cfg.SheetFormat = format
		got, err := ExportURL(cfg)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if got != want {
			t.Errorf("%s: got %s want %s", format, got, want)
		}
	}

	cfg.SheetExportURL = "https://example.test/pub?output=csv"
	if got, _ := ExportURL(cfg); got != cfg.SheetExportURL {
		t.Errorf("override ignored: %s", got)
	}

	if _, err := ExportURL(config.Config{SheetFormat: "csv"}); err == nil {
		t.Error("expected missing sheet id error")
	}
}

func TestFetchExportRetries(t *testing.T) {
	attempt := 0
	client := NewClient(testConfig())
	client.backoffBase = time.Millisecond
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Cache-Control") != "no-store" {
				t.Fatalf("missing cache header")
			}
			attempt++
			if attempt == 1 {
				return respond(http.StatusTooManyRequests, "slow down"), nil
			}
			if attempt == 2 {
				return respond(http.StatusBadGateway, "oops"), nil
			}
			return respond(http.StatusOK, "Producto,Precio\nFlan,900\n"), nil
		}),
	}

	exp, err := client.FetchExport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if attempt != 3 {
		t.Fatalf("attempts=%d", attempt)
	}
	if exp.Provider != "export" || exp.Format != "csv" || !strings.Contains(string(exp.Body), "Flan") {
		t.Fatalf("unexpected export: %+v", exp)
	}
}

func TestFetchExportNotFound(t *testing.T) {
	calls := 0
	client := NewClient(testConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return respond(http.StatusNotFound, "<html>gone</html>"), nil
		}),
	}

	_, err := client.FetchExport(context.Background())
	if !errors.Is(err, internal.ErrFetch) {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("404 retried %d times", calls)
	}
}

func TestFetchExportGivesUp(t *testing.T) {
	cfg := testConfig()
	cfg.FetchRetries = 1
	client := NewClient(cfg)
	client.backoffBase = time.Millisecond
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}),
	}
	_, err := client.FetchExport(context.Background())
	if !errors.Is(err, internal.ErrFetch) || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err=%v", err)
	}
}
