package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/dashboard"
	"github.com/sells-group/flightdelay/internal/model"
)

type fakeSource struct {
	ds        *model.Dataset
	reloadErr error
}

func (f *fakeSource) Get(context.Context) (*model.Dataset, error) {
	if f.ds == nil {
		return nil, errors.New("no dataset")
	}
	return f.ds, nil
}

func (f *fakeSource) Reload(context.Context) (*model.Dataset, error) {
	if f.reloadErr != nil {
		return nil, f.reloadErr
	}
	return f.ds, nil
}

func testDataset() *model.Dataset {
	sched := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	departed := func(id, origin, airline string, delay int) model.Flight {
		dep := sched.Add(time.Duration(delay) * time.Minute)
		d := delay
		return model.Flight{Flight: id, Origin: origin, AirlineID: airline, ScheduledDeparture: sched, Departure: &dep, DepartureDelay: &d}
	}
	return model.NewDataset(
		[]model.Flight{
			departed("AA1", "JFK", "AA", 5),
			departed("AA2", "JFK", "AA", 30),
			departed("UA1", "EWR", "UA", 90),
			{Flight: "UA2", Origin: "EWR", AirlineID: "UA", ScheduledDeparture: sched},
		},
		[]model.Airport{
			{Code: "JFK", Name: "John F Kennedy Intl", Latitude: 40.6398, Longitude: -73.7789},
			{Code: "EWR", Name: "Newark Liberty Intl", Latitude: 40.6925, Longitude: -74.1687},
		},
		[]model.Airline{{ID: "AA", Name: "American Airlines Inc."}, {ID: "UA", Name: "United Air Lines Inc."}},
		nil,
	)
}

func newTestServer(t *testing.T, src *fakeSource, opts Options) *httptest.Server {
	t.Helper()
	m := dashboard.NewManager(src, aggregate.DefaultOptions())
	if opts.Thresholds == (classify.Thresholds{}) {
		opts.Thresholds = classify.DefaultThresholds()
	}
	srv := httptest.NewServer(New(m, opts))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createSession(t *testing.T, base string) SessionView {
	t.Helper()
	resp := do(t, http.MethodPost, base+"/api/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view SessionView
	decode(t, resp, &view)
	require.NotEmpty(t, view.ID)
	return view
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestDomains(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})

	resp := do(t, http.MethodGet, srv.URL+"/api/domains", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got DomainsResponse
	decode(t, resp, &got)
	assert.Equal(t, []Option{
		{Key: "all", Label: "All"},
		{Key: "EWR", Label: "Newark Liberty Intl"},
		{Key: "JFK", Label: "John F Kennedy Intl"},
	}, got.Airports)
	assert.Equal(t, "all", got.Airlines[0].Key)
	assert.Len(t, got.Airlines, 3)
}

func TestDomains_LoadError(t *testing.T) {
	srv := newTestServer(t, &fakeSource{}, Options{})

	resp := do(t, http.MethodGet, srv.URL+"/api/domains", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})

	view := createSession(t, srv.URL)
	assert.Equal(t, FilterView{Selected: []string{"all"}, MaxSelections: 1}, view.Filters["airport"])
	assert.Equal(t, FilterView{Selected: []string{"all"}, MaxSelections: 1}, view.Filters["airline"])

	resp := do(t, http.MethodGet, srv.URL+"/api/sessions/"+view.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/sessions/"+view.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/sessions/"+view.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/sessions/"+view.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetFilter(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})
	id := createSession(t, srv.URL).ID

	resp := do(t, http.MethodPut, srv.URL+"/api/sessions/"+id+"/filters/airport", `{"keys":["JFK"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view SessionView
	decode(t, resp, &view)
	require.NotNil(t, view.Changed)
	assert.True(t, *view.Changed)
	assert.Equal(t, FilterView{Selected: []string{"JFK"}, MaxSelections: 3}, view.Filters["airport"])

	// same selection again is not a change
	resp = do(t, http.MethodPut, srv.URL+"/api/sessions/"+id+"/filters/airports", `{"keys":["JFK"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	assert.False(t, *view.Changed)

	resp = do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/report", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Report aggregate.Report `json:"report"`
	}
	decode(t, resp, &doc)
	assert.Equal(t, 2, doc.Report.KPIs.TotalFlights)
	assert.Equal(t, []string{"American Airlines Inc."}, doc.Report.AirlineOrder)

	// picking All alongside keys collapses back to All
	resp = do(t, http.MethodPut, srv.URL+"/api/sessions/"+id+"/filters/airport", `{"keys":["JFK","all"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	assert.Equal(t, FilterView{Selected: []string{"all"}, MaxSelections: 1}, view.Filters["airport"])
}

func TestSetFilter_BadRequests(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})
	id := createSession(t, srv.URL).ID

	resp := do(t, http.MethodPut, srv.URL+"/api/sessions/"+id+"/filters/aircraft", `{"keys":["N1"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/sessions/"+id+"/filters/airline", `{"keys":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/sessions/missing/filters/airline", `{"keys":["AA"]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReport_Formats(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})
	id := createSession(t, srv.URL).ID

	resp := do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/report", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Cards []struct {
			Title string `json:"title"`
			Value string `json:"value"`
		} `json:"cards"`
	}
	decode(t, resp, &doc)
	require.Len(t, doc.Cards, 4)
	assert.Equal(t, "Total Flights", doc.Cards[0].Title)
	assert.Equal(t, "4", doc.Cards[0].Value)
	assert.Equal(t, "1", doc.Cards[3].Value)

	resp = do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/report?format=yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "total_flights: 4")

	resp = do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/report?format=text", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Delay Rate:")

	resp = do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/report?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMap(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{})
	id := createSession(t, srv.URL).ID

	resp := do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/map", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID string `json:"id"`
		} `json:"features"`
	}
	decode(t, resp, &fc)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "EWR", fc.Features[0].ID)
}

func TestReload(t *testing.T) {
	src := &fakeSource{ds: testDataset()}
	srv := newTestServer(t, src, Options{})
	createSession(t, srv.URL)

	resp := do(t, http.MethodPost, srv.URL+"/api/reload", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "reloaded", body["status"])
	assert.Equal(t, float64(4), body["flights"])
	assert.Equal(t, float64(1), body["sessions"])

	src.reloadErr = errors.New("workbook locked")
	resp = do(t, http.MethodPost, srv.URL+"/api/reload", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{CORSOrigins: []string{"https://dash.example.com"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "https://dash.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{RateLimit: 1, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, http.MethodGet, srv.URL+"/health", "").StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := newRateLimiter(1, 1, time.Millisecond)
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	time.Sleep(5 * time.Millisecond)
	rl.allow("10.0.0.2")

	rl.mu.Lock()
	_, stale := rl.clients["10.0.0.1"]
	rl.mu.Unlock()
	assert.False(t, stale)
}

func getFrom(t *testing.T, url, forwardedFor string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func TestRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{RateLimit: 1, RateBurst: 1})

	assert.Equal(t, http.StatusOK, getFrom(t, srv.URL+"/health", "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, getFrom(t, srv.URL+"/health", "203.0.113.2"))
}

func TestRateLimit_TrustProxyKeysOnForwardedFor(t *testing.T) {
	srv := newTestServer(t, &fakeSource{ds: testDataset()}, Options{RateLimit: 1, RateBurst: 1, TrustProxy: true})

	assert.Equal(t, http.StatusOK, getFrom(t, srv.URL+"/health", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, getFrom(t, srv.URL+"/health", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, getFrom(t, srv.URL+"/health", "203.0.113.1"))
}
