package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type clockEventRepositoryImpl struct {
	db *database.DB
}

func NewClockEventRepository(db *database.DB) attendance.ClockEventRepository {
	return &clockEventRepositoryImpl{db: db}
}

// Create implements attendance.ClockEventRepository.
func (r *clockEventRepositoryImpl) Create(ctx context.Context, event attendance.ClockEvent) (attendance.ClockEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO clock_events (employee_id, site_id, event_type, timestamp_utc)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query, event.EmployeeID, event.SiteID, event.EventType, event.Timestamp.UTC()).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return attendance.ClockEvent{}, fmt.Errorf("failed to create clock event: %w", err)
	}
	event.Timestamp = event.Timestamp.UTC()
	return event, nil
}

// ListByEmployeeAndRange implements attendance.ClockEventRepository.
func (r *clockEventRepositoryImpl) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.ClockEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ce.id, ce.employee_id, ce.site_id, ce.event_type, ce.timestamp_utc, ce.created_at, s.name
		FROM clock_events ce
		JOIN sites s ON s.id = ce.site_id
		WHERE ce.employee_id = $1 AND ce.timestamp_utc >= $2 AND ce.timestamp_utc < $3
		ORDER BY ce.timestamp_utc, ce.id
	`
	rows, err := q.Query(ctx, query, employeeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list clock events: %w", err)
	}
	defer rows.Close()

	events := []attendance.ClockEvent{}
	for rows.Next() {
		var ev attendance.ClockEvent
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.SiteID, &ev.EventType, &ev.Timestamp, &ev.CreatedAt, &ev.SiteName); err != nil {
			return nil, fmt.Errorf("failed to scan clock event: %w", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetLastAtSite implements attendance.ClockEventRepository.
func (r *clockEventRepositoryImpl) GetLastAtSite(ctx context.Context, employeeID, siteID string, since time.Time) (*attendance.ClockEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, site_id, event_type, timestamp_utc, created_at
		FROM clock_events
		WHERE employee_id = $1 AND site_id = $2 AND timestamp_utc >= $3
		ORDER BY timestamp_utc DESC, id DESC
		LIMIT 1
	`
	var ev attendance.ClockEvent
	err := q.QueryRow(ctx, query, employeeID, siteID, since.UTC()).
		Scan(&ev.ID, &ev.EmployeeID, &ev.SiteID, &ev.EventType, &ev.Timestamp, &ev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last clock event: %w", err)
	}
	ev.Timestamp = ev.Timestamp.UTC()
	return &ev, nil
}
