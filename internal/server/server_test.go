package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/n0roo/richness-kit/internal/metrics"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRecords() []richness.Record {
	return []richness.Record{
		{DeviceID: "0042", CafeCluster: 0, PingCluster: 1, RestaurantCluster: 3,
			CafeScore: richness.Float(10), PingScore: richness.Float(20), Overall: 1},
		{DeviceID: "b7", CafeCluster: 7, PingCluster: 2, RestaurantCluster: 5,
			CafeScore: richness.Float(1), PingScore: richness.Float(2), RestaurantScore: richness.Float(3), Overall: 2},
		{DeviceID: "c9", CafeCluster: 42, PingCluster: 0, RestaurantCluster: 1,
			CafeScore: richness.Float(4), PingScore: richness.Float(5), RestaurantScore: richness.Float(6), Overall: 3},
	}
}

func newTestServer(t *testing.T, recs []richness.Record, loadErr error) (*httptest.Server, *metrics.Recorder, *int) {
	t.Helper()
	calls := 0
	rec := metrics.New()
	srv := NewServer(Config{Source: "overall.csv"}, func() ([]richness.Record, error) {
		calls++
		return recs, loadErr
	}, nil, rec, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, rec, &calls
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t, fixtureRecords(), nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestDevices(t *testing.T) {
	ts, _, calls := newTestServer(t, fixtureRecords(), nil)

	var all DevicesResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/devices", &all))
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 3, all.Matched)
	assert.Equal(t, "0042", all.Devices[0].DeviceID)
	assert.Equal(t, "overall.csv", all.Source)

	var ranged DevicesResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/devices?min=1.5&max=2.5", &ranged))
	require.Len(t, ranged.Devices, 1)
	assert.Equal(t, "b7", ranged.Devices[0].DeviceID)

	var limited DevicesResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/devices?limit=1", &limited))
	assert.Equal(t, 3, limited.Matched)
	assert.Equal(t, 1, limited.Count)

	assert.Equal(t, 1, *calls, "records are loaded once")
}

func TestDevices_BadQuery(t *testing.T) {
	ts, _, _ := newTestServer(t, fixtureRecords(), nil)

	for _, q := range []string{"min=abc", "max=NaN", "min=3&max=1", "limit=0", "limit=x"} {
		var body map[string]string
		status := getJSON(t, ts.URL+"/api/devices?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, status, q)
		assert.NotEmpty(t, body["error"], q)
	}
}

func TestDevice(t *testing.T) {
	ts, _, _ := newTestServer(t, fixtureRecords(), nil)

	var got DeviceResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/devices/0042", &got))
	assert.Equal(t, "0042", got.Device.DeviceID)
	assert.Nil(t, got.Device.RestaurantScore)
	require.Len(t, got.Personas, 3)
	assert.Equal(t, richness.DomainCafe, got.Personas[0].Domain)
	assert.True(t, got.Personas[0].Found)

	var unknown DeviceResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/devices/c9", &unknown))
	assert.False(t, unknown.Personas[0].Found)
	assert.Contains(t, unknown.Personas[0].Text, "No persona description available")

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/devices/missing", &body))
	assert.Contains(t, body["error"], "missing")
}

func TestSummary(t *testing.T) {
	ts, _, _ := newTestServer(t, fixtureRecords(), nil)

	var got SummaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary", &got))
	assert.Equal(t, 3, got.Count)
	require.NotNil(t, got.Mean)
	assert.InDelta(t, 2.0, *got.Mean, 1e-12)
	require.NotNil(t, got.Std)
	assert.InDelta(t, 1.0, *got.Std, 1e-12)
	assert.Equal(t, 1, got.NullScores[richness.DomainRestaurant])
	assert.Equal(t, 0, got.NullScores[richness.DomainCafe])
	assert.Len(t, got.Histogram, histogramBins)
}

func TestSummary_UndefinedStatsAreNull(t *testing.T) {
	ts, _, _ := newTestServer(t, fixtureRecords()[:1], nil)

	var got SummaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary", &got))
	assert.Equal(t, 1, got.Count)
	assert.NotNil(t, got.Mean)
	assert.Nil(t, got.Std)

	empty, _, _ := newTestServer(t, nil, nil)
	var none SummaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, empty.URL+"/api/summary", &none))
	assert.Equal(t, 0, none.Count)
	assert.Nil(t, none.Mean)
	assert.Empty(t, none.Histogram)
}

func TestLoadError(t *testing.T) {
	ts, _, _ := newTestServer(t, nil, errors.New("boom"))

	var body map[string]string
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, ts.URL+"/api/summary", &body))
	assert.Equal(t, "boom", body["error"])
}

func TestMetrics(t *testing.T) {
	ts, rec, _ := newTestServer(t, fixtureRecords(), nil)

	getJSON(t, ts.URL+"/api/devices", nil)
	getJSON(t, ts.URL+"/api/devices/b7", nil)
	getJSON(t, ts.URL+"/api/devices/nope", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ViewerRequests.WithLabelValues("/api/devices", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ViewerRequests.WithLabelValues("/api/devices/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ViewerRequests.WithLabelValues("/api/devices/{id}", "404")))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.OverallScore.WithLabelValues("count")))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "richness_viewer_requests_total"))
}
