package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketlens/internal/dashboard"
	"marketlens/internal/market"
)

type fakeSource struct {
	series map[string]market.Series
}

func (f *fakeSource) FetchDaily(_ context.Context, symbol string, start, end time.Time) (market.Series, error) {
	bars, ok := f.series[symbol]
	if !ok {
		return nil, market.ErrNoData
	}
	var out market.Series
	for _, b := range bars {
		if !b.Timestamp.Before(start) && !b.Timestamp.After(end) {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil, market.ErrNoData
	}
	return out, nil
}

func (f *fakeSource) Close() error { return nil }

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func steadyBars(n int, base, step float64) market.Series {
	start := testNow.AddDate(0, 0, -n+1)
	bars := make(market.Series, n)
	for i := range bars {
		c := base + step*float64(i)
		bars[i] = market.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c - step/2,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	src := &fakeSource{series: map[string]market.Series{
		"AAA": steadyBars(360, 100, 0.2),
		"SPY": steadyBars(400, 400, 0.1),
		"GLD": steadyBars(360, 180, -0.05),
	}}
	dash, err := dashboard.New(src, nil, dashboard.Options{})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := NewServer(Config{
		Dashboard: dash,
		Source:    src,
		Benchmark: "SPY",
		Clock:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	parsed := map[string]json.RawMessage{}
	if ct := rec.Header().Get("Content-Type"); rec.Body.Len() > 0 && strings.HasPrefix(ct, "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("bad JSON body: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, parsed
}

func TestMomentumEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv, http.MethodGet, "/api/momentum?symbol=AAA", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var momentum struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(body["momentum"], &momentum); err != nil {
		t.Fatal(err)
	}
	if momentum.State == "" || momentum.State == "INSUFFICIENT_DATA" {
		t.Errorf("state = %q", momentum.State)
	}
}

func TestAnalysisRequiresSymbol(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/analysis", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAnalysisUnknownSymbol(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/analysis?symbol=NOPE", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBadRangeRejected(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/analysis?symbol=AAA&range=3w", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTemplatesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv, http.MethodGet, "/api/portfolio/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var templates []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body["templates"], &templates); err != nil {
		t.Fatal(err)
	}
	if len(templates) != 8 {
		t.Errorf("got %d templates", len(templates))
	}
}

func TestHedgeSimulateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv, http.MethodPost, "/api/hedge/simulate", map[string]any{
		"ticker":         "AAA",
		"hedge_symbol":   "GLD",
		"allocation_pct": 20,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var sim struct {
		Ticker string `json:"ticker"`
		Hedge  string `json:"hedge_symbol"`
	}
	if err := json.Unmarshal(body["simulation"], &sim); err != nil {
		t.Fatal(err)
	}
	if sim.Ticker != "AAA" || sim.Hedge != "GLD" {
		t.Errorf("simulation labels: %+v", sim)
	}
}

func TestMetricsBadAllocation(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/portfolio/metrics", map[string]any{
		"allocations": []map[string]any{{"symbol": "AAA", "weight": 55}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBacktestJobLifecycle(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv, http.MethodPost, "/api/portfolio/backtest", map[string]any{
		"allocations": []map[string]any{
			{"symbol": "AAA", "weight": 60},
			{"symbol": "SPY", "weight": 40},
		},
		"years": 1,
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status %d: %s", rec.Code, rec.Body.String())
	}
	var job BacktestJob
	if err := json.Unmarshal(body["job"], &job); err != nil {
		t.Fatal(err)
	}
	if job.ID == "" || job.Status != JobStatusPending {
		t.Fatalf("submitted job: %+v", job)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec, body = doJSON(t, srv, http.MethodGet, "/api/portfolio/backtest/"+job.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("poll status %d", rec.Code)
		}
		if err := json.Unmarshal(body["job"], &job); err != nil {
			t.Fatal(err)
		}
		if job.Status == JobStatusDone || job.Status == JobStatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in %s", job.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if job.Status != JobStatusDone {
		t.Fatalf("job failed: %s", job.Message)
	}
	if job.Result == nil || job.Result.FinalValue <= 0 {
		t.Fatalf("bad result: %+v", job.Result)
	}

	rec, body = doJSON(t, srv, http.MethodGet, "/api/jobs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("jobs status %d", rec.Code)
	}
	var jobs []BacktestJob
	if err := json.Unmarshal(body["jobs"], &jobs); err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Errorf("jobs list: %+v", jobs)
	}
}

func TestBacktestStatusUnknownJob(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/portfolio/backtest/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
