package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
)

var home = model.Coordinates{Latitude: 28.5, Longitude: -81.4}

// countingTransit fails for job sites at latitude < 0 and tracks the high
// watermark of concurrent in-flight calls.
type countingTransit struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	calls    atomic.Int32
}

func (f *countingTransit) Route(_ context.Context, _, dest model.Coordinates, _ model.TransitMode) (*model.TransitEstimate, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	f.mu.Lock()
	if cur > f.maxSeen {
		f.maxSeen = cur
	}
	f.mu.Unlock()
	f.calls.Add(1)

	time.Sleep(5 * time.Millisecond)
	if dest.Latitude < 0 {
		return nil, errors.New("routing backend down")
	}
	return &model.TransitEstimate{DurationMinutes: 30}, nil
}

func TestCommuteTimes_FailuresAreIsolated(t *testing.T) {
	tr := &countingTransit{}
	e := New(tr, 3, zerolog.Nop())

	jobs := []JobSite{
		{JobID: "good-1", Location: model.Coordinates{Latitude: 28.6, Longitude: -81.2}},
		{JobID: "bad", Location: model.Coordinates{Latitude: -1, Longitude: -1}},
		{JobID: "good-2", Location: model.Coordinates{Latitude: 28.7, Longitude: -81.3}},
	}
	got := e.CommuteTimes(context.Background(), home, model.ModeLynx, jobs)

	if len(got) != 3 {
		t.Fatalf("results: got %d, want 3", len(got))
	}
	for i, want := range []struct {
		id         string
		accessible bool
	}{{"good-1", true}, {"bad", false}, {"good-2", true}} {
		if got[i].JobID != want.id {
			t.Errorf("result %d preserves order: got %q, want %q", i, got[i].JobID, want.id)
		}
		if got[i].Accessible != want.accessible {
			t.Errorf("result %q accessible: got %v, want %v", want.id, got[i].Accessible, want.accessible)
		}
		if want.accessible && got[i].Transit == nil {
			t.Errorf("result %q missing transit estimate", want.id)
		}
	}
}

func TestCommuteTimes_BoundsConcurrency(t *testing.T) {
	tr := &countingTransit{}
	e := New(tr, 4, zerolog.Nop())

	jobs := make([]JobSite, 25)
	for i := range jobs {
		jobs[i] = JobSite{JobID: fmt.Sprintf("job-%d", i), Location: model.Coordinates{Latitude: 28.5, Longitude: -81.4}}
	}
	_ = e.CommuteTimes(context.Background(), home, model.ModeCar, jobs)

	if tr.calls.Load() != 25 {
		t.Errorf("calls: got %d, want 25", tr.calls.Load())
	}
	if tr.maxSeen > 4 {
		t.Errorf("max concurrent lookups: got %d, want <= 4", tr.maxSeen)
	}
}

func TestCommuteTimes_EmptyBatch(t *testing.T) {
	e := New(&countingTransit{}, 0, zerolog.Nop())
	if got := e.CommuteTimes(context.Background(), home, model.ModeWalk, nil); len(got) != 0 {
		t.Fatalf("expected empty results, got %d", len(got))
	}
}
