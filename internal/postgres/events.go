// Package postgres implements the storage contracts over pgx. Transfer
// mutations are single guarded UPDATEs; the row-level condition is what
// arbitrates between racing clients.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calendar-service/internal/event"
)

type EventRepository struct {
	DB *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{DB: db}
}

const eventColumns = `id, calendar_id, date, status, user_id, previous_user_id, to_user_id, city, created_at, updated_at`

func scanEvent(row pgx.Row) (*event.CalendarEvent, error) {
	var ev event.CalendarEvent
	var status string
	err := row.Scan(&ev.ID, &ev.CalendarID, &ev.Date, &status, &ev.UserID,
		&ev.PreviousUserID, &ev.ToUserID, &ev.City, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.Status = event.Status(status)
	return &ev, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.CalendarEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id=$1`
	ev, err := scanEvent(r.DB.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, event.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	return ev, nil
}

func (r *EventRepository) FindPendingForUser(ctx context.Context, userID string) ([]event.CalendarEvent, error) {
	// Takeover eligibility is decided here: city-less releases are open to
	// everyone, city-bound ones only to users with that city assigned.
	q := `SELECT ` + eventColumns + ` FROM calendar_events e
	      WHERE (e.status=$1 AND e.to_user_id=$2)
	         OR (e.status=$3 AND (e.city IS NULL
	             OR e.city IN (SELECT unnest(u.cities) FROM users u WHERE u.id=$2)))
	      ORDER BY e.date, e.id`
	rows, err := r.DB.Query(ctx, q, string(event.StatusTransferring), userID, string(event.StatusAvailableForTakeover))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	defer rows.Close()

	var out []event.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	return out, nil
}

func (r *EventRepository) ConditionalUpdate(ctx context.Context, id string, expect event.Expect, patch event.Patch) (*event.CalendarEvent, error) {
	q := `UPDATE calendar_events
	      SET status=$1, user_id=$2, previous_user_id=$3, to_user_id=$4,
	          city=COALESCE($5, city), updated_at=now()
	      WHERE id=$6 AND status=$7 AND ($8::text IS NULL OR to_user_id=$8)
	      RETURNING ` + eventColumns
	ev, err := scanEvent(r.DB.QueryRow(ctx, q,
		string(patch.Status), patch.UserID, patch.PreviousUserID, patch.ToUserID,
		patch.City, id, string(expect.Status), expect.ToUserID))
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a lost race from a missing row.
		var exists bool
		checkErr := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM calendar_events WHERE id=$1)`, id).Scan(&exists)
		if checkErr != nil {
			return nil, fmt.Errorf("%w: %v", event.ErrTransient, checkErr)
		}
		if !exists {
			return nil, fmt.Errorf("event %s: %w", id, event.ErrNotFound)
		}
		return nil, fmt.Errorf("event %s: %w", id, event.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	return ev, nil
}

func (r *EventRepository) CreateCalendar(ctx context.Context, cal *event.Calendar, events []event.CalendarEvent) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	insertCal := `INSERT INTO calendars (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, insertCal, cal.ID, cal.Name, now); err != nil {
		return fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	cal.CreatedAt = now

	insertEv := `INSERT INTO calendar_events
	             (id, calendar_id, date, status, created_at, updated_at)
	             VALUES ($1, $2, $3, $4, $5, $5)`
	for i := range events {
		ev := &events[i]
		if _, err := tx.Exec(ctx, insertEv, ev.ID, ev.CalendarID, ev.Date, string(ev.Status), now); err != nil {
			return fmt.Errorf("%w: %v", event.ErrTransient, err)
		}
		ev.CreatedAt = now
		ev.UpdatedAt = now
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	return nil
}

func (r *EventRepository) ListByCalendar(ctx context.Context, calendarID string, from, to time.Time) ([]event.CalendarEvent, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if !from.IsZero() && !to.IsZero() {
		q := `SELECT ` + eventColumns + ` FROM calendar_events
		      WHERE calendar_id=$1 AND date >= $2 AND date <= $3 ORDER BY date`
		rows, err = r.DB.Query(ctx, q, calendarID, from, to)
	} else {
		q := `SELECT ` + eventColumns + ` FROM calendar_events
		      WHERE calendar_id=$1 ORDER BY date`
		rows, err = r.DB.Query(ctx, q, calendarID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	defer rows.Close()

	var out []event.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	return out, nil
}
