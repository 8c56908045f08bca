// Package postgres provides the production store driver, backed by
// database/sql over the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/careerpilot/shadowcal/internal/model"
	"github.com/careerpilot/shadowcal/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS calendar_events (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    event_type      TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    description     TEXT,
    start_time      TIMESTAMPTZ NOT NULL,
    end_time        TIMESTAMPTZ NOT NULL,
    job_id          TEXT,
    application_id  TEXT,
    interview_id    TEXT,
    location_text   TEXT,
    latitude        DOUBLE PRECISION,
    longitude       DOUBLE PRECISION,
    serves_event_id TEXT,
    transit_mode    TEXT,
    lynx_route      TEXT,
    transit_minutes INTEGER,
    creation_time   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_events_user_window
    ON calendar_events (user_id, start_time, end_time);
CREATE INDEX IF NOT EXISTS idx_events_serves
    ON calendar_events (user_id, serves_event_id);

CREATE TABLE IF NOT EXISTS user_profiles (
    user_id             TEXT PRIMARY KEY,
    home_address        TEXT,
    home_latitude       DOUBLE PRECISION,
    home_longitude      DOUBLE PRECISION,
    transit_mode        TEXT NOT NULL DEFAULT 'lynx',
    max_commute_minutes INTEGER NOT NULL DEFAULT 0,
    employment_type     TEXT,
    creation_time       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap applies the schema. Idempotent; safe to run on every startup.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// NewWithDB constructs a Postgres-backed store.Store.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Events() store.Events     { return &events{db: s.db} }
func (s *pgStore) Profiles() store.Profiles { return &profiles{db: s.db} }

// HealthPing reports connectivity for health probes.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Events ---

type events struct{ db *sql.DB }

const eventColumns = `id, user_id, event_type, title, description, start_time, end_time,
	job_id, application_id, interview_id, location_text, latitude, longitude,
	serves_event_id, transit_mode, lynx_route, transit_minutes, creation_time`

func (e *events) Create(ctx context.Context, m *model.CalendarEvent) (*model.CalendarEvent, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}

	lat, lng := coordCols(out.Coordinates)
	mode := modeCol(out.TransitMode)
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO calendar_events
            (id, user_id, event_type, title, description, start_time, end_time,
             job_id, application_id, interview_id, location_text, latitude, longitude,
             serves_event_id, transit_mode, lynx_route, transit_minutes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING creation_time
    `, out.ID, out.UserID, string(out.Type), out.Title, out.Description,
		out.StartTime.UTC(), out.EndTime.UTC(),
		out.JobID, out.ApplicationID, out.InterviewID,
		out.LocationText, lat, lng,
		out.ServesEventID, mode, out.LynxRoute, out.TransitTimeMinutes)
	if err := row.Scan(&out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) Get(ctx context.Context, userID, id string) (*model.CalendarEvent, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT `+eventColumns+` FROM calendar_events WHERE user_id = $1 AND id = $2
    `, userID, id)
	return scanEvent(row)
}

func (e *events) Update(ctx context.Context, m *model.CalendarEvent) (*model.CalendarEvent, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, model.ErrValidation
	}
	lat, lng := coordCols(m.Coordinates)
	mode := modeCol(m.TransitMode)
	res, err := e.db.ExecContext(ctx, `
        UPDATE calendar_events SET
            event_type = $1, title = $2, description = $3, start_time = $4, end_time = $5,
            job_id = $6, application_id = $7, interview_id = $8, location_text = $9,
            latitude = $10, longitude = $11, serves_event_id = $12, transit_mode = $13,
            lynx_route = $14, transit_minutes = $15
        WHERE user_id = $16 AND id = $17
    `, string(m.Type), m.Title, m.Description, m.StartTime.UTC(), m.EndTime.UTC(),
		m.JobID, m.ApplicationID, m.InterviewID, m.LocationText,
		lat, lng, m.ServesEventID, mode, m.LynxRoute, m.TransitTimeMinutes,
		m.UserID, m.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return e.Get(ctx, m.UserID, m.ID)
}

func (e *events) Delete(ctx context.Context, userID, id string) error {
	res, err := e.db.ExecContext(ctx,
		`DELETE FROM calendar_events WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (e *events) ListRange(ctx context.Context, userID string, start, end time.Time) ([]*model.CalendarEvent, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT `+eventColumns+` FROM calendar_events
        WHERE user_id = $1 AND start_time < $2 AND end_time > $3
        ORDER BY start_time
    `, userID, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

func (e *events) ListServing(ctx context.Context, userID, servedEventID string) ([]*model.CalendarEvent, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT `+eventColumns+` FROM calendar_events
        WHERE user_id = $1 AND serves_event_id = $2
        ORDER BY start_time
    `, userID, servedEventID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (p *profiles) Upsert(ctx context.Context, m *model.UserProfile) (*model.UserProfile, error) {
	if m.UserID == "" {
		return nil, model.ErrValidation
	}
	out := *m
	if out.TransitMode == "" {
		out.TransitMode = model.ModeLynx
	}

	lat, lng := coordCols(out.HomeCoordinates)
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO user_profiles
            (user_id, home_address, home_latitude, home_longitude, transit_mode,
             max_commute_minutes, employment_type)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (user_id) DO UPDATE SET
            home_address = EXCLUDED.home_address,
            home_latitude = EXCLUDED.home_latitude,
            home_longitude = EXCLUDED.home_longitude,
            transit_mode = EXCLUDED.transit_mode,
            max_commute_minutes = EXCLUDED.max_commute_minutes,
            employment_type = EXCLUDED.employment_type
        RETURNING creation_time
    `, out.UserID, out.HomeAddress, lat, lng, string(out.TransitMode),
		out.MaxCommuteMinutes, nullStr(out.EmploymentType))
	if err := row.Scan(&out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	var out model.UserProfile
	var lat, lng *float64
	var mode string
	var employment *string
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, home_address, home_latitude, home_longitude, transit_mode,
               max_commute_minutes, employment_type, creation_time
        FROM user_profiles WHERE user_id = $1
    `, userID)
	err := row.Scan(&out.UserID, &out.HomeAddress, &lat, &lng, &mode,
		&out.MaxCommuteMinutes, &employment, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.TransitMode = model.TransitMode(mode)
	out.HomeCoordinates = coordsFromCols(lat, lng)
	if employment != nil {
		out.EmploymentType = *employment
	}
	return &out, nil
}

// --- Row helpers ---

type rowScanner interface{ Scan(dest ...any) error }

func scanEvent(row rowScanner) (*model.CalendarEvent, error) {
	var out model.CalendarEvent
	var typ string
	var lat, lng *float64
	var mode *string
	err := row.Scan(&out.ID, &out.UserID, &typ, &out.Title, &out.Description,
		&out.StartTime, &out.EndTime,
		&out.JobID, &out.ApplicationID, &out.InterviewID,
		&out.LocationText, &lat, &lng,
		&out.ServesEventID, &mode, &out.LynxRoute, &out.TransitTimeMinutes,
		&out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.Type = model.EventType(typ)
	out.Coordinates = coordsFromCols(lat, lng)
	if mode != nil {
		m := model.TransitMode(*mode)
		out.TransitMode = &m
	}
	return &out, nil
}

func scanEvents(rows *sql.Rows) ([]*model.CalendarEvent, error) {
	var out []*model.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func coordCols(c *model.Coordinates) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Latitude, &c.Longitude
}

func coordsFromCols(lat, lng *float64) *model.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &model.Coordinates{Latitude: *lat, Longitude: *lng}
}

func modeCol(m *model.TransitMode) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
