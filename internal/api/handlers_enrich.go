package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/careerpilot/shadowcal/internal/api/respond"
	"github.com/careerpilot/shadowcal/internal/api/validate"
	"github.com/careerpilot/shadowcal/internal/auth"
	"github.com/careerpilot/shadowcal/internal/enrich"
	"github.com/careerpilot/shadowcal/internal/model"
)

// maxEnrichBatch caps one request's transit lookups.
const maxEnrichBatch = 100

type EnrichHandler struct {
	enricher   *enrich.Enricher
	authorizer auth.Authorizer
}

func NewEnrichHandler(enricher *enrich.Enricher, authorizer auth.Authorizer) *EnrichHandler {
	return &EnrichHandler{enricher: enricher, authorizer: authorizer}
}

// EnrichJobs POST /api/jobs/enrich
// Annotates a batch of job postings with commute estimates from the given
// origin. Failed lookups come back accessible=false rather than failing the
// batch.
func (h *EnrichHandler) EnrichJobs(w http.ResponseWriter, r *http.Request) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}
	if _, err := h.authorizer.Authorize(r.Context(), apiKey, "jobs.enrich", "default"); err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}

	var req struct {
		Home        model.Coordinates `json:"home"`
		TransitMode string            `json:"transitMode,omitempty"`
		Jobs        []enrich.JobSite  `json:"jobs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.TransitMode(req.TransitMode); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if len(req.Jobs) == 0 {
		respond.WriteBadRequest(w, "jobs is required")
		return
	}
	if len(req.Jobs) > maxEnrichBatch {
		respond.WriteBadRequest(w, "jobs exceeds batch limit of 100")
		return
	}

	mode := model.TransitMode(req.TransitMode)
	if mode == "" {
		mode = model.ModeLynx
	}
	results := h.enricher.CommuteTimes(r.Context(), req.Home, mode, req.Jobs)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}
