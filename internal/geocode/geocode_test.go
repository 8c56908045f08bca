package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func geocodeServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Query().Get("address") == "" {
			t.Error("missing address query param")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]float64{{"lat": 28.538, "lng": -81.379}},
		})
	}))
}

func TestGeocode_ResolvesAndCaches(t *testing.T) {
	var calls int
	srv := geocodeServer(t, &calls)
	defer srv.Close()

	c := New(srv.URL, "k", time.Hour, 100, zerolog.Nop())
	ctx := context.Background()

	first, err := c.Geocode(ctx, "400 South Orange Ave, Orlando")
	if err != nil || first == nil {
		t.Fatalf("Geocode: %v %v", first, err)
	}
	if first.Latitude != 28.538 {
		t.Errorf("latitude: got %f", first.Latitude)
	}

	// Same address, different spelling: must hit the cache.
	second, err := c.Geocode(ctx, "  400 south ORANGE ave,   Orlando ")
	if err != nil || second == nil {
		t.Fatalf("Geocode (cached): %v %v", second, err)
	}
	if calls != 1 {
		t.Errorf("upstream calls: got %d, want 1", calls)
	}
}

func TestGeocode_ParsesWithoutContentTypeHeader(t *testing.T) {
	// Some providers omit the Content-Type header; the body is still JSON
	// and must still parse.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]float64{{"lat": 28.474, "lng": -81.468}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Hour, 100, zerolog.Nop())
	coords, err := c.Geocode(context.Background(), "1234 W Colonial Dr")
	if err != nil || coords == nil {
		t.Fatalf("Geocode: %v %v", coords, err)
	}
	if coords.Longitude != -81.468 {
		t.Errorf("longitude: got %f", coords.Longitude)
	}
}

func TestGeocode_NoResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Hour, 100, zerolog.Nop())
	coords, err := c.Geocode(context.Background(), "unknown place")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if coords != nil {
		t.Fatalf("expected nil coords, got %+v", coords)
	}
}

func TestGeocode_EmptyAddress(t *testing.T) {
	c := New("http://unused.invalid", "", time.Hour, 100, zerolog.Nop())
	coords, err := c.Geocode(context.Background(), "   ")
	if err != nil || coords != nil {
		t.Fatalf("empty address: got %v, %v", coords, err)
	}
}
