package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/pipeline"
	"menuboard/internal/qr"
	"menuboard/internal/signage"
)

type fakeScreen struct {
	mu         sync.Mutex
	feed       pipeline.Feed
	snap       signage.Snapshot
	refreshErr error
	refreshes  int
	subs       []func(signage.Snapshot)
}

func (f *fakeScreen) Snapshot() signage.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeScreen) Feed() pipeline.Feed { return f.feed }

func (f *fakeScreen) Links() []qr.Link {
	return []qr.Link{{Name: "menu", Label: "MENÚ", Target: "https://example.com/menu"}}
}

func (f *fakeScreen) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeScreen) Subscribe(fn func(signage.Snapshot)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.subs[idx] = nil
	}
}

func (f *fakeScreen) emit(snap signage.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	subs := append([]func(signage.Snapshot){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(snap)
		}
	}
}

type fakeRuns struct {
	runs []internal.RunRecord
	gen  uint64
}

func (f fakeRuns) Generation() uint64 { return f.gen }

func (f fakeRuns) RecentRuns(limit int) ([]internal.RunRecord, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func sampleFeed() pipeline.Feed {
	items := []internal.Item{
		{Row: 1, Category: "Cafés", Name: "Latte", BasePrice: "$ 300", Active: true, IsPromotion: true, PromoPrice: "$ 250", SignageEligible: true},
		{Row: 2, Category: "Cafés", Name: "Espresso", BasePrice: "$ 200", Active: true},
	}
	return pipeline.Feed{
		Generation: 4,
		Items:      items,
		Menu:       []internal.CategoryGroup{{Category: "Cafés", Items: items}},
		Promotions: items[:1],
	}
}

func newTestServer(t *testing.T, screen *fakeScreen, cfg config.Config) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(cfg, screen, fakeRuns{runs: []internal.RunRecord{{TraceID: "a", Outcome: "ok"}, {TraceID: "b", Outcome: "fetch"}}, gen: 5}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	screen := &fakeScreen{snap: signage.Snapshot{Status: signage.Status{Kind: signage.StatusOK}, Generation: 4}}
	_, ts := newTestServer(t, screen, config.Config{})

	var body map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 4, body["generation"])
	assert.EqualValues(t, 5, body["started"], "cycles started, including one still in flight")
}

func TestMenuEndpoint(t *testing.T) {
	_, ts := newTestServer(t, &fakeScreen{feed: sampleFeed()}, config.Config{})

	var doc pipeline.MenuDocument
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/menu", &doc))
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, "Cafés", doc.Categories[0].Name)
	assert.Len(t, doc.Categories[0].Items, 2)
}

func TestMenuXLSXEndpoint(t *testing.T) {
	_, ts := newTestServer(t, &fakeScreen{feed: sampleFeed()}, config.Config{})

	resp, err := http.Get(ts.URL + "/api/menu.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "menu.xlsx")
}

func TestPromosEndpoint(t *testing.T) {
	_, ts := newTestServer(t, &fakeScreen{feed: sampleFeed()}, config.Config{})

	var body struct {
		Generation uint64               `json:"generation"`
		Promotions []pipeline.PromoCard `json:"promotions"`
	}
	getJSON(t, ts.URL+"/api/promos", &body)
	assert.Equal(t, uint64(4), body.Generation)
	require.Len(t, body.Promotions, 1)
	assert.Equal(t, "Latte", body.Promotions[0].Name)
	assert.Equal(t, pipeline.PriceDisplay{Main: "$ 250", Struck: "$ 300"}, body.Promotions[0].Price)
}

func TestLinksAndRuns(t *testing.T) {
	_, ts := newTestServer(t, &fakeScreen{}, config.Config{})

	var links []qr.Link
	getJSON(t, ts.URL+"/api/links", &links)
	require.Len(t, links, 1)
	assert.Equal(t, "menu", links[0].Name)

	var runs []internal.RunRecord
	getJSON(t, ts.URL+"/api/runs?limit=1", &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, "a", runs[0].TraceID)

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/runs?limit=zero", &errBody))
}

func TestRefreshEndpoint(t *testing.T) {
	screen := &fakeScreen{}
	_, ts := newTestServer(t, screen, config.Config{})

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	screen.mu.Lock()
	screen.refreshErr = fmt.Errorf("%w: status 500", internal.ErrFetch)
	screen.mu.Unlock()
	resp, err = http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fetch", body["failure"])
	screen.mu.Lock()
	assert.Equal(t, 2, screen.refreshes)
	screen.mu.Unlock()
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>tv</h1>"), 0o644))
	_, ts := newTestServer(t, &fakeScreen{}, config.Config{StaticDir: dir})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func readSnapshot(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg wsMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func TestWebsocketBroadcastsSnapshots(t *testing.T) {
	screen := &fakeScreen{snap: signage.Snapshot{Status: signage.Status{Kind: signage.StatusLoading}}}
	srv, ts := newTestServer(t, screen, config.Config{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/signage"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	first := readSnapshot(t, conn)
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, signage.StatusLoading, first.Snapshot.Status.Kind)

	require.Eventually(t, func() bool { return srv.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	screen.emit(signage.Snapshot{Status: signage.Status{Kind: signage.StatusOK}, Generation: 7})

	next := readSnapshot(t, conn)
	assert.Equal(t, signage.StatusOK, next.Snapshot.Status.Kind)
	assert.Equal(t, uint64(7), next.Snapshot.Generation)
}
