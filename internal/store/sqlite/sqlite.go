// Package sqlite provides the embedded store driver used for local
// development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

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
    start_time      TIMESTAMP NOT NULL,
    end_time        TIMESTAMP NOT NULL,
    job_id          TEXT,
    application_id  TEXT,
    interview_id    TEXT,
    location_text   TEXT,
    latitude        REAL,
    longitude       REAL,
    serves_event_id TEXT,
    transit_mode    TEXT,
    lynx_route      TEXT,
    transit_minutes INTEGER,
    creation_time   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_user_window
    ON calendar_events (user_id, start_time, end_time);
CREATE INDEX IF NOT EXISTS idx_events_serves
    ON calendar_events (user_id, serves_event_id);

CREATE TABLE IF NOT EXISTS user_profiles (
    user_id             TEXT PRIMARY KEY,
    home_address        TEXT,
    home_latitude       REAL,
    home_longitude      REAL,
    transit_mode        TEXT NOT NULL DEFAULT 'lynx',
    max_commute_minutes INTEGER NOT NULL DEFAULT 0,
    employment_type     TEXT,
    creation_time       TIMESTAMP NOT NULL
);
`

// Open opens (or creates) a SQLite database at the given path, enables WAL
// journal mode, and applies the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a SQLite-backed store.Store.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Events() store.Events     { return &events{db: s.db} }
func (s *sqliteStore) Profiles() store.Profiles { return &profiles{db: s.db} }

// HealthPing reports connectivity for health probes.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
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
	out.CreationTime = time.Now().UTC()

	lat, lng := coordCols(out.Coordinates)
	mode := modeCol(out.TransitMode)
	_, err := e.db.ExecContext(ctx, `
        INSERT INTO calendar_events (`+eventColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.ID, out.UserID, string(out.Type), out.Title, out.Description,
		out.StartTime.UTC(), out.EndTime.UTC(),
		out.JobID, out.ApplicationID, out.InterviewID,
		out.LocationText, lat, lng,
		out.ServesEventID, mode, out.LynxRoute, out.TransitTimeMinutes,
		out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) Get(ctx context.Context, userID, id string) (*model.CalendarEvent, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT `+eventColumns+` FROM calendar_events WHERE user_id = ? AND id = ?
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
            event_type = ?, title = ?, description = ?, start_time = ?, end_time = ?,
            job_id = ?, application_id = ?, interview_id = ?, location_text = ?,
            latitude = ?, longitude = ?, serves_event_id = ?, transit_mode = ?,
            lynx_route = ?, transit_minutes = ?
        WHERE user_id = ? AND id = ?
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
		`DELETE FROM calendar_events WHERE user_id = ? AND id = ?`, userID, id)
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
        WHERE user_id = ? AND start_time < ? AND end_time > ?
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
        WHERE user_id = ? AND serves_event_id = ?
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
	out.CreationTime = time.Now().UTC()

	lat, lng := coordCols(out.HomeCoordinates)
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO user_profiles
            (user_id, home_address, home_latitude, home_longitude, transit_mode,
             max_commute_minutes, employment_type, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
        ON CONFLICT (user_id) DO UPDATE SET
            home_address = excluded.home_address,
            home_latitude = excluded.home_latitude,
            home_longitude = excluded.home_longitude,
            transit_mode = excluded.transit_mode,
            max_commute_minutes = excluded.max_commute_minutes,
            employment_type = excluded.employment_type
    `, out.UserID, out.HomeAddress, lat, lng, string(out.TransitMode),
		out.MaxCommuteMinutes, nullStr(out.EmploymentType), out.CreationTime)
	if err != nil {
		return nil, err
	}
	return p.Get(ctx, out.UserID)
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	var out model.UserProfile
	var lat, lng *float64
	var mode string
	var employment *string
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, home_address, home_latitude, home_longitude, transit_mode,
               max_commute_minutes, employment_type, creation_time
        FROM user_profiles WHERE user_id = ?
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
