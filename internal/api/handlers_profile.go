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

type ProfileHandler struct {
	svc        *services.CalendarService
	authorizer auth.Authorizer
}

func NewProfileHandler(svc *services.CalendarService, authorizer auth.Authorizer) *ProfileHandler {
	return &ProfileHandler{svc: svc, authorizer: authorizer}
}

// GetProfile GET /api/users/{userId}/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "profile.read", "default")
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}

	userID := mux.Vars(r)["userId"]
	if !auth.CanAccessUser(actorInfo, userID) {
		respond.WriteForbidden(w, "actor may not access this user's profile")
		return
	}

	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "profile not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// PutProfile PUT /api/users/{userId}/profile
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return
	}
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, "profile.write", "default")
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
		respond.WriteForbidden(w, "actor may not access this user's profile")
		return
	}

	var req struct {
		HomeAddress       *string            `json:"homeAddress,omitempty"`
		HomeCoordinates   *model.Coordinates `json:"homeCoordinates,omitempty"`
		TransitMode       string             `json:"transitMode,omitempty"`
		MaxCommuteMinutes int                `json:"maxCommuteMinutes,omitempty"`
		EmploymentType    string             `json:"employmentType,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.PutProfile(req.TransitMode, req.MaxCommuteMinutes, req.HomeCoordinates); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	p := &model.UserProfile{
		UserID:            userID,
		HomeAddress:       req.HomeAddress,
		HomeCoordinates:   req.HomeCoordinates,
		TransitMode:       model.TransitMode(req.TransitMode),
		MaxCommuteMinutes: req.MaxCommuteMinutes,
		EmploymentType:    req.EmploymentType,
	}
	out, err := h.svc.PutProfile(r.Context(), p)
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
