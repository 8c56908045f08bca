package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/careerpilot/shadowcal/internal/api/respond"
	"github.com/careerpilot/shadowcal/internal/api/validate"
	"github.com/careerpilot/shadowcal/internal/auth"
	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/services"
)

type PreflightHandler struct {
	svc        *services.PreflightService
	authorizer auth.Authorizer
}

func NewPreflightHandler(svc *services.PreflightService, authorizer auth.Authorizer) *PreflightHandler {
	return &PreflightHandler{svc: svc, authorizer: authorizer}
}

// Preflight POST /api/users/{userId}/preflight
// Evaluates a hypothetical job against the user's committed calendar without
// writing anything.
func (h *PreflightHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "preflight.run", "default")
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}

	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if !auth.CanAccessUser(actorInfo, userID) {
		respond.WriteForbidden(w, "actor may not access this user's calendar")
		return
	}

	var req services.PreflightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ShiftPattern(req.ShiftPattern); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Coordinates(req.JobLocation); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	req.UserID = userID

	out, err := h.svc.Preflight(r.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
