package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/schedule"
	"github.com/careerpilot/shadowcal/internal/store"
)

// preflightHorizon is the window of real events projected against.
const preflightHorizon = 14 * 24 * time.Hour

// PreflightService answers "can I take this job" without persisting anything.
type PreflightService struct {
	store     store.Store
	projector *schedule.Projector
	geo       schedule.Geocoder
	log       zerolog.Logger
}

func NewPreflightService(s store.Store, projector *schedule.Projector, geo schedule.Geocoder, log zerolog.Logger) *PreflightService {
	return &PreflightService{store: s, projector: projector, geo: geo, log: log}
}

// PreflightRequest describes the hypothetical job being evaluated.
type PreflightRequest struct {
	UserID            string               `json:"-"`
	ShiftPattern      []model.TypicalShift `json:"shiftPattern,omitempty"`
	EmploymentType    string               `json:"employmentType,omitempty"`
	JobLocation       *model.Coordinates   `json:"jobLocation,omitempty"`
	JobAddress        string               `json:"jobAddress,omitempty"`
	MaxCommuteMinutes int                  `json:"maxCommuteMinutes,omitempty"`
}

// Preflight loads the user's near-term events and profile, resolves the job
// and home locations best-effort, and runs the projection. Location data
// that cannot be resolved degrades the commute check, never the schedule
// check.
func (s *PreflightService) Preflight(ctx context.Context, req PreflightRequest) (*model.PreflightResult, error) {
	if req.UserID == "" {
		return nil, model.ErrValidation
	}
	for _, slot := range req.ShiftPattern {
		if !slot.Valid() {
			return nil, model.ErrValidation
		}
	}

	now := time.Now()
	existing, err := s.store.Events().ListRange(ctx, req.UserID, now, now.Add(preflightHorizon))
	if err != nil {
		return nil, err
	}

	in := schedule.PreflightInput{
		ShiftPattern:      req.ShiftPattern,
		EmploymentType:    req.EmploymentType,
		ExistingEvents:    existing,
		JobLocation:       req.JobLocation,
		TransitMode:       model.ModeLynx,
		MaxCommuteMinutes: req.MaxCommuteMinutes,
		WindowStart:       now,
		WindowEnd:         now.Add(preflightHorizon),
	}

	profile, err := s.store.Profiles().Get(ctx, req.UserID)
	switch {
	case err == nil:
		in.HomeLocation = s.resolveHome(ctx, profile)
		if profile.TransitMode.Valid() {
			in.TransitMode = profile.TransitMode
		}
		if in.MaxCommuteMinutes == 0 {
			in.MaxCommuteMinutes = profile.MaxCommuteMinutes
		}
		if in.EmploymentType == "" {
			in.EmploymentType = profile.EmploymentType
		}
	case errors.Is(err, model.ErrNotFound):
		// No profile: schedule check still runs, commute check is skipped.
	default:
		return nil, err
	}

	if in.JobLocation == nil && req.JobAddress != "" && s.geo != nil {
		coords, gerr := s.geo.Geocode(ctx, req.JobAddress)
		if gerr != nil {
			s.log.Debug().Err(gerr).Msg("job address geocode failed; commute unknown")
		} else {
			in.JobLocation = coords
		}
	}

	res := s.projector.Preflight(ctx, in)
	return &res, nil
}

// resolveHome prefers stored coordinates and falls back to geocoding the
// home address.
func (s *PreflightService) resolveHome(ctx context.Context, profile *model.UserProfile) *model.Coordinates {
	if profile.HomeCoordinates != nil {
		return profile.HomeCoordinates
	}
	if profile.HomeAddress == nil || *profile.HomeAddress == "" || s.geo == nil {
		return nil
	}
	coords, err := s.geo.Geocode(ctx, *profile.HomeAddress)
	if err != nil {
		s.log.Debug().Err(err).Str("user_id", profile.UserID).Msg("home address geocode failed")
		return nil
	}
	return coords
}
