// Package enrich annotates batches of job postings with commute estimates.
// Lookups within a batch are independent: concurrency is bounded to respect
// provider rate limits, and one failed lookup never cancels the others.
package enrich

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/schedule"
)

// defaultConcurrency caps outstanding transit lookups per batch.
const defaultConcurrency = 5

// JobSite is one batch item: a job posting with a resolved location.
type JobSite struct {
	JobID    string            `json:"jobId"`
	Location model.Coordinates `json:"location"`
}

// Result is the per-item outcome. Accessible is false when no route was
// resolvable, whether because the provider failed or none exists.
type Result struct {
	JobID      string                 `json:"jobId"`
	Transit    *model.TransitEstimate `json:"transitInfo"`
	Accessible bool                   `json:"accessible"`
}

// Enricher runs bounded-concurrency commute lookups.
type Enricher struct {
	transit     schedule.TransitLookup
	concurrency int
	log         zerolog.Logger
}

// New builds an enricher; concurrency <= 0 selects the default window of 5.
func New(transit schedule.TransitLookup, concurrency int, log zerolog.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Enricher{transit: transit, concurrency: concurrency, log: log}
}

// CommuteTimes resolves a commute estimate from home to every job site.
// Results preserve input order. Lookups may complete in any order.
func (e *Enricher) CommuteTimes(ctx context.Context, home model.Coordinates, mode model.TransitMode, jobs []JobSite) []Result {
	results := make([]Result, len(jobs))
	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job JobSite) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := Result{JobID: job.JobID}
			est, err := e.transit.Route(ctx, home, job.Location, mode)
			if err != nil {
				e.log.Debug().Err(err).Str("job_id", job.JobID).Msg("commute lookup failed; marking unknown")
			} else if est != nil {
				res.Transit = est
				res.Accessible = true
			}
			results[i] = res
		}(i, job)
	}
	wg.Wait()
	return results
}
