package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := swarm.DefaultConfig()
	cfg.TickMillis = 10
	srv := New(cfg, "127.0.0.1:0", log.New(io.Discard, "", 0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.sim.Reset()
		ts.Close()
	})
	return srv, ts
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	resp, err := http.Post(url, "application/json", reader)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestLaunchWithoutCenterConflicts(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/launch", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLaunchLifecycle(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := post(t, ts.URL+"/api/flood-center", map[string]float64{"lat": 55.3959, "lng": 10.3883})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, ts.URL+"/api/launch", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var snap swarm.SimSnapshot
	decode(t, resp, &snap)
	assert.True(t, snap.Launched)
	assert.Len(t, snap.Drones, swarm.DefaultConfig().Agents)
	assert.NotEmpty(t, snap.Victims)
	assert.True(t, srv.sim.Running(), "launch should start the clock")

	// Pause freezes the tick counter.
	resp = post(t, ts.URL+"/api/pause", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, srv.sim.Running())
	tick := srv.sim.Tick()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, tick, srv.sim.Tick())

	resp = post(t, ts.URL+"/api/resume", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, srv.sim.Running())

	resp = post(t, ts.URL+"/api/reset", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, srv.sim.Launched())
	assert.False(t, srv.sim.Running())
}

func TestResumeBeforeLaunchConflicts(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/resume", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFloodCenterFixedMidRun(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/launch", map[string]float64{"lat": 55.3959, "lng": 10.3883})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = post(t, ts.URL+"/api/flood-center", map[string]float64{"lat": 0, "lng": 0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStateAndSummaryEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/launch", map[string]float64{"lat": 55.3959, "lng": 10.3883})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var snap swarm.SimSnapshot
	stateResp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	decode(t, stateResp, &snap)
	assert.True(t, snap.Launched)
	assert.Len(t, snap.Regions, swarm.DefaultConfig().Agents)

	var sum swarm.Summary
	sumResp, err := http.Get(ts.URL + "/api/summary")
	require.NoError(t, err)
	decode(t, sumResp, &sum)
	assert.Equal(t, len(snap.Victims), sum.TotalDetected)
}

func TestRegionsGeoJSON(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/launch", map[string]float64{"lat": 55.3959, "lng": 10.3883})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	geoResp, err := http.Get(ts.URL + "/api/regions")
	require.NoError(t, err)
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	decode(t, geoResp, &fc)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, swarm.DefaultConfig().Agents)
	for _, f := range fc.Features {
		assert.Equal(t, "Polygon", f.Geometry.Type)
		assert.Contains(t, f.Properties, "label")
	}
}

// TestEventsAccumulate lets a fast run finish and checks the event buffer
// matches the rescue total.
func TestEventsAccumulate(t *testing.T) {
	srv, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/launch", map[string]float64{"lat": 55.3959, "lng": 10.3883})
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	deadline := time.Now().Add(30 * time.Second)
	for !srv.sim.Finished() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, srv.sim.Finished(), "run did not finish in time")

	var events []swarm.RescueEvent
	evResp, err := http.Get(ts.URL + "/api/events")
	require.NoError(t, err)
	decode(t, evResp, &events)
	sum := srv.sim.Summary()
	assert.Len(t, events, sum.TotalRescued)

	// Reset clears the buffer.
	resp = post(t, ts.URL+"/api/reset", nil)
	resp.Body.Close()
	evResp, err = http.Get(ts.URL + "/api/events")
	require.NoError(t, err)
	events = nil
	decode(t, evResp, &events)
	assert.Empty(t, events)
}
