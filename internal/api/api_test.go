package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/shadowcal/internal/auth"
	"github.com/careerpilot/shadowcal/internal/enrich"
	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/schedule"
	"github.com/careerpilot/shadowcal/internal/services"
	"github.com/careerpilot/shadowcal/internal/store/sqlite"
)

type stubTransit struct {
	minutes int
	err     error
}

func (s *stubTransit) Route(_ context.Context, _, _ model.Coordinates, _ model.TransitMode) (*model.TransitEstimate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.TransitEstimate{DurationMinutes: s.minutes, RouteSummary: "Lynx 8"}, nil
}

func newTestServer(t *testing.T, transit schedule.TransitLookup) *httptest.Server {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := sqlite.NewWithDB(db)
	log := zerolog.Nop()
	synth := schedule.NewCommuteSynthesizer(transit, nil, log)
	deps := Deps{
		Calendar:   services.NewCalendarService(st, synth, log),
		Preflight:  services.NewPreflightService(st, schedule.NewProjector(transit, log), nil, log),
		Enricher:   enrich.New(transit, 0, log),
		Authorizer: auth.NewMockAuthorizer(),
	}
	srv := httptest.NewServer(NewRouter(deps))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.LocalDevAPIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func eventBody(title string, start, end time.Time) map[string]interface{} {
	return map[string]interface{}{
		"eventType":   "shift",
		"title":       title,
		"startTime":   start.Format(time.RFC3339),
		"endTime":     end.Format(time.RFC3339),
		"coordinates": map[string]float64{"latitude": 28.47, "longitude": -81.46},
	}
}

func TestEventLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubTransit{minutes: 25})
	base := srv.URL + "/api/users/worker_1"
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	// Profile first so event creation synthesizes a commute.
	resp0 := doJSON(t, http.MethodPut, base+"/profile", map[string]interface{}{
		"homeCoordinates": map[string]float64{"latitude": 28.55, "longitude": -81.38},
		"transitMode":     "lynx",
	})
	require.Equal(t, http.StatusOK, resp0.StatusCode)
	_ = resp0.Body.Close()

	// Create
	resp := doJSON(t, http.MethodPost, base+"/events", eventBody("Warehouse AM", start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created services.CreateEventResult
	decode(t, resp, &created)
	require.NotNil(t, created.Event)
	assert.NotEmpty(t, created.Event.ID)

	// Get
	resp = doJSON(t, http.MethodGet, base+"/events/"+created.Event.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.CalendarEvent
	decode(t, resp, &got)
	assert.Equal(t, "Warehouse AM", got.Title)

	// List includes the shift (and the synthesized commute)
	resp = doJSON(t, http.MethodGet, base+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Events []model.CalendarEvent `json:"events"`
		Count  int                   `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 2, listed.Count)

	// Delete removes the shift and its commute
	resp = doJSON(t, http.MethodDelete, base+"/events/"+created.Event.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base+"/events", nil)
	decode(t, resp, &listed)
	assert.Equal(t, 0, listed.Count)
}

func TestCreateEvent_ConflictReturns409WithDetails(t *testing.T) {
	srv := newTestServer(t, &stubTransit{err: fmt.Errorf("no provider")})
	base := srv.URL + "/api/users/worker_1"
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	resp := doJSON(t, http.MethodPost, base+"/events", eventBody("Warehouse AM", start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/events", eventBody("Overlapping interview", start.Add(2*time.Hour), start.Add(3*time.Hour)))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var rejected services.CreateEventResult
	decode(t, resp, &rejected)
	require.Len(t, rejected.Conflicts, 1)
	assert.Equal(t, model.OverlapFull, rejected.Conflicts[0].Type)
	assert.Equal(t, 60, rejected.Conflicts[0].OverlapMinutes)
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	srv := newTestServer(t, &stubTransit{minutes: 10})
	base := srv.URL + "/api/users/worker_1"
	start := time.Now().UTC().Add(48 * time.Hour)

	// Unknown event type
	body := eventBody("x", start, start.Add(time.Hour))
	body["eventType"] = "party"
	resp := doJSON(t, http.MethodPost, base+"/events", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	// End before start
	resp = doJSON(t, http.MethodPost, base+"/events", eventBody("x", start, start.Add(-time.Hour)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, &stubTransit{minutes: 10})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/users/worker_1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer not-the-key")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t, &stubTransit{minutes: 10})
	base := srv.URL + "/api/users/worker_1"

	resp := doJSON(t, http.MethodGet, base+"/profile", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	put := map[string]interface{}{
		"homeAddress":       "600 N Orange Ave, Orlando, FL",
		"homeCoordinates":   map[string]float64{"latitude": 28.55, "longitude": -81.38},
		"transitMode":       "lynx",
		"maxCommuteMinutes": 45,
		"employmentType":    "part-time",
	}
	resp = doJSON(t, http.MethodPut, base+"/profile", put)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base+"/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p model.UserProfile
	decode(t, resp, &p)
	assert.Equal(t, model.ModeLynx, p.TransitMode)
	assert.Equal(t, 45, p.MaxCommuteMinutes)

	// Bad transit mode rejected
	put["transitMode"] = "teleport"
	resp = doJSON(t, http.MethodPut, base+"/profile", put)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPreflightEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubTransit{minutes: 30})
	base := srv.URL + "/api/users/worker_1"

	// Committed block next Monday 09:00-17:00, inside the projection window.
	start := nextMonday().Add(9 * time.Hour)
	resp := doJSON(t, http.MethodPost, base+"/events", eventBody("Existing shift", start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Full-time 9-5 pattern collides with it.
	req := map[string]interface{}{
		"employmentType":    "full-time",
		"jobLocation":       map[string]float64{"latitude": 28.47, "longitude": -81.46},
		"maxCommuteMinutes": 45,
	}
	resp = doJSON(t, http.MethodPost, base+"/preflight", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out model.PreflightResult
	decode(t, resp, &out)
	assert.True(t, out.HasScheduleConflict)
	assert.False(t, out.CanApply)
	assert.NotEmpty(t, out.Conflicts)
}

// nextMonday returns the first upcoming Monday at midnight, always at least
// one full day out.
func nextMonday() time.Time {
	d := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	for d.Weekday() != time.Monday {
		d = d.Add(24 * time.Hour)
	}
	return d
}

func TestEnrichEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubTransit{minutes: 22})

	req := map[string]interface{}{
		"home": map[string]float64{"latitude": 28.55, "longitude": -81.38},
		"jobs": []map[string]interface{}{
			{"jobId": "job-1", "location": map[string]float64{"latitude": 28.47, "longitude": -81.46}},
			{"jobId": "job-2", "location": map[string]float64{"latitude": 28.60, "longitude": -81.20}},
		},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/jobs/enrich", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Results []enrich.Result `json:"results"`
		Count   int             `json:"count"`
	}
	decode(t, resp, &out)
	require.Equal(t, 2, out.Count)
	assert.Equal(t, "job-1", out.Results[0].JobID)
	assert.True(t, out.Results[0].Accessible)
	assert.Equal(t, 22, out.Results[0].Transit.DurationMinutes)

	// Empty batch rejected
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/jobs/enrich", map[string]interface{}{
		"home": map[string]float64{"latitude": 28.55, "longitude": -81.38},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}
