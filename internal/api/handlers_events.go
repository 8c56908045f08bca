package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/careerpilot/shadowcal/internal/api/respond"
	"github.com/careerpilot/shadowcal/internal/api/validate"
	"github.com/careerpilot/shadowcal/internal/auth"
	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/services"
)

// defaultListWindow bounds GET /events when the caller gives no range.
const defaultListWindow = 14 * 24 * time.Hour

type EventHandler struct {
	svc        *services.CalendarService
	authorizer auth.Authorizer
}

func NewEventHandler(svc *services.CalendarService, authorizer auth.Authorizer) *EventHandler {
	return &EventHandler{svc: svc, authorizer: authorizer}
}

// eventRequest is the wire form of a calendar event write.
type eventRequest struct {
	EventType     string             `json:"eventType"`
	Title         string             `json:"title"`
	Description   *string            `json:"description,omitempty"`
	StartTime     time.Time          `json:"startTime"`
	EndTime       time.Time          `json:"endTime"`
	JobID         *string            `json:"jobId,omitempty"`
	ApplicationID *string            `json:"applicationId,omitempty"`
	InterviewID   *string            `json:"interviewId,omitempty"`
	LocationText  *string            `json:"location,omitempty"`
	Coordinates   *model.Coordinates `json:"coordinates,omitempty"`
}

func (r *eventRequest) toModel(userID string) *model.CalendarEvent {
	return &model.CalendarEvent{
		UserID:        userID,
		Type:          model.EventType(r.EventType),
		Title:         r.Title,
		Description:   r.Description,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		JobID:         r.JobID,
		ApplicationID: r.ApplicationID,
		InterviewID:   r.InterviewID,
		LocationText:  r.LocationText,
		Coordinates:   r.Coordinates,
	}
}

// authorizeUser runs the key extraction, authorization and per-user access
// check shared by every event route.
func (h *EventHandler) authorizeUser(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return "", false
	}
	actorInfo, err := h.authorizer.Authorize(r.Context(), apiKey, operation, "default")
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return "", false
	}
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", false
	}
	if !auth.CanAccessUser(actorInfo, userID) {
		respond.WriteForbidden(w, "actor may not access this user's calendar")
		return "", false
	}
	return userID, true
}

// CreateEvent POST /api/users/{userId}/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r, "event.create")
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateEvent(req.EventType, req.Title, req.Description, req.Coordinates); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.CreateEvent(r.Context(), req.toModel(userID))
	if err != nil {
		writeEventError(w, out, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateEvent PUT /api/users/{userId}/events/{eventId}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r, "event.update")
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateEvent(req.EventType, req.Title, req.Description, req.Coordinates); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	ev := req.toModel(userID)
	ev.ID = mux.Vars(r)["eventId"]
	out, err := h.svc.UpdateEvent(r.Context(), ev)
	if err != nil {
		writeEventError(w, out, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetEvent GET /api/users/{userId}/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r, "event.read")
	if !ok {
		return
	}

	ev, err := h.svc.GetEvent(r.Context(), userID, mux.Vars(r)["eventId"])
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "event not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, ev)
}

// ListEvents GET /api/users/{userId}/events?from=...&to=...
// Times are RFC 3339; the default window is [now, now+14d).
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r, "event.read")
	if !ok {
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	events, err := h.svc.ListEvents(r.Context(), userID, from, to)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}

// DeleteEvent DELETE /api/users/{userId}/events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUser(w, r, "event.delete")
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), userID, mux.Vars(r)["eventId"]); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "event not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now, now.Add(defaultListWindow)
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be RFC 3339")
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be RFC 3339")
		}
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return from, to, nil
}

// writeEventError maps service errors from event writes. A conflict carries
// the rejected write's conflict list in the body.
func writeEventError(w http.ResponseWriter, out *services.CreateEventResult, err error) {
	switch {
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, out)
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidInterval):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "event not found")
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
