package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/namatovu-christine/alumni-sync/internal/convert"
	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/model"
)

// EventCache implements cache.EventCache using PostgreSQL.
type EventCache struct{ db *DB }

// NewEventCache constructs an event access object.
func NewEventCache(db *DB) *EventCache { return &EventCache{db: db} }

const eventColumns = `event_id, title, description, category, start_time, end_time,
location, venue, is_virtual, meeting_link, max_attendees, current_attendees,
registration_deadline, is_paid, price, currency, organizer_id, organizer_name,
contact_email, contact_phone, image_url, tags, is_active, created_at,
updated_at, sync_status, last_sync`

func scanEvent(s scanner) (model.Event, error) {
	var e model.Event
	var tags string
	err := s.Scan(
		&e.EventID, &e.Title, &e.Description, &e.Category, &e.StartTime, &e.EndTime,
		&e.Location, &e.Venue, &e.IsVirtual, &e.MeetingLink, &e.MaxAttendees, &e.CurrentAttendees,
		&e.RegistrationDeadline, &e.IsPaid, &e.Price, &e.Currency, &e.OrganizerID, &e.OrganizerName,
		&e.ContactEmail, &e.ContactPhone, &e.ImageURL, &tags, &e.IsActive, &e.CreatedAt,
		&e.UpdatedAt, &e.SyncStatus, &e.LastSync,
	)
	if err != nil {
		return model.Event{}, err
	}
	e.Tags = convert.SplitList(tags)
	return e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID selects an event by id.
func (c *EventCache) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE event_id=$1`
	e, err := scanEvent(c.db.Pool.QueryRow(ctx, q, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetAll returns events ordered by start time, soonest first.
func (c *EventCache) GetAll(ctx context.Context) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY start_time ASC`
	rows, err := c.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// Search matches title, description and venue case-insensitively.
func (c *EventCache) Search(ctx context.Context, query string) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events
WHERE title ILIKE '%'||$1||'%'
   OR description ILIKE '%'||$1||'%'
   OR venue ILIKE '%'||$1||'%'
ORDER BY start_time ASC`
	rows, err := c.db.Pool.Query(ctx, q, query)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// Upcoming returns events starting at or after now, soonest first.
func (c *EventCache) Upcoming(ctx context.Context, now int64) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE start_time >= $1 ORDER BY start_time ASC`
	rows, err := c.db.Pool.Query(ctx, q, now)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// UpsertBatch inserts or fully replaces events by id in one transaction.
func (c *EventCache) UpsertBatch(ctx context.Context, events []model.Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := c.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const q = `
INSERT INTO events (` + eventColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)
ON CONFLICT (event_id) DO UPDATE SET
  title=EXCLUDED.title, description=EXCLUDED.description, category=EXCLUDED.category,
  start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time,
  location=EXCLUDED.location, venue=EXCLUDED.venue, is_virtual=EXCLUDED.is_virtual,
  meeting_link=EXCLUDED.meeting_link, max_attendees=EXCLUDED.max_attendees,
  current_attendees=EXCLUDED.current_attendees,
  registration_deadline=EXCLUDED.registration_deadline,
  is_paid=EXCLUDED.is_paid, price=EXCLUDED.price, currency=EXCLUDED.currency,
  organizer_id=EXCLUDED.organizer_id, organizer_name=EXCLUDED.organizer_name,
  contact_email=EXCLUDED.contact_email, contact_phone=EXCLUDED.contact_phone,
  image_url=EXCLUDED.image_url, tags=EXCLUDED.tags, is_active=EXCLUDED.is_active,
  created_at=EXCLUDED.created_at, updated_at=EXCLUDED.updated_at,
  sync_status=EXCLUDED.sync_status, last_sync=EXCLUDED.last_sync`

	for i, e := range events {
		if e.EventID == "" {
			return fmt.Errorf("event[%d]: empty id", i)
		}
		_, err = tx.Exec(ctx, q,
			e.EventID, e.Title, e.Description, e.Category, e.StartTime, e.EndTime,
			e.Location, e.Venue, e.IsVirtual, e.MeetingLink, e.MaxAttendees, e.CurrentAttendees,
			e.RegistrationDeadline, e.IsPaid, e.Price, e.Currency, e.OrganizerID, e.OrganizerName,
			e.ContactEmail, e.ContactPhone, e.ImageURL, convert.JoinList(e.Tags), e.IsActive,
			e.CreatedAt, e.UpdatedAt, e.SyncStatus, e.LastSync,
		)
		if err != nil {
			return fmt.Errorf("event[%d]: %w", i, err)
		}
	}
	return nil
}

// UpdateSyncStatus updates only the sync metadata of one row.
func (c *EventCache) UpdateSyncStatus(ctx context.Context, eventID string, status model.SyncStatus, at int64) error {
	const q = `UPDATE events SET sync_status=$2, last_sync=$3 WHERE event_id=$1`
	_, err := c.db.Pool.Exec(ctx, q, eventID, status, at)
	return err
}

// DeleteByID removes one event; absent id is a no-op.
func (c *EventCache) DeleteByID(ctx context.Context, eventID string) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM events WHERE event_id=$1`, eventID)
	return err
}

// DeleteAll clears the table.
func (c *EventCache) DeleteAll(ctx context.Context) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM events`)
	return err
}

// DeleteExpired prunes events that ended before now. Events without an end
// time are judged by start time instead.
func (c *EventCache) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	const q = `
DELETE FROM events
WHERE (end_time > 0 AND end_time < $1)
   OR (end_time = 0 AND start_time > 0 AND start_time < $1)`
	tag, err := c.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
