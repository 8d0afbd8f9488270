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

const wfhColumns = `id, employee_id, date, clock_in_time, clock_out_time, duration_minutes, status, created_at, updated_at`

type wfhSessionRepositoryImpl struct {
	db *database.DB
}

func NewWfhSessionRepository(db *database.DB) attendance.WfhSessionRepository {
	return &wfhSessionRepositoryImpl{db: db}
}

func scanWfhSession(row pgx.Row) (attendance.WfhSession, error) {
	var s attendance.WfhSession
	err := row.Scan(&s.ID, &s.EmployeeID, &s.Date, &s.ClockIn, &s.ClockOut, &s.DurationMinutes, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create implements attendance.WfhSessionRepository.
func (r *wfhSessionRepositoryImpl) Create(ctx context.Context, session attendance.WfhSession) (attendance.WfhSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO wfh_sessions (employee_id, date, clock_in_time, clock_out_time, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + wfhColumns

	created, err := scanWfhSession(q.QueryRow(ctx, query,
		session.EmployeeID, session.Date, session.ClockIn, session.ClockOut, session.DurationMinutes, session.Status,
	))
	if uniqueConstraint(err) != "" {
		return attendance.WfhSession{}, attendance.ErrWfhAlreadyStarted
	}
	if err != nil {
		return attendance.WfhSession{}, fmt.Errorf("failed to create wfh session: %w", err)
	}
	return created, nil
}

// GetByEmployeeAndDate implements attendance.WfhSessionRepository.
func (r *wfhSessionRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.WfhSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + wfhColumns + ` FROM wfh_sessions WHERE employee_id = $1 AND date = $2`
	s, err := scanWfhSession(q.QueryRow(ctx, query, employeeID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wfh session: %w", err)
	}
	return &s, nil
}

// Update implements attendance.WfhSessionRepository.
func (r *wfhSessionRepositoryImpl) Update(ctx context.Context, session attendance.WfhSession) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE wfh_sessions
		SET clock_out_time = $1, duration_minutes = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, session.ClockOut, session.DurationMinutes, session.Status, session.ID)
	if err != nil {
		return fmt.Errorf("failed to update wfh session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wfh session %s not found: %w", session.ID, pgx.ErrNoRows)
	}
	return nil
}

// ListByEmployeeAndRange implements attendance.WfhSessionRepository.
func (r *wfhSessionRepositoryImpl) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.WfhSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + wfhColumns + `
		FROM wfh_sessions
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, created_at
	`
	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list wfh sessions: %w", err)
	}
	defer rows.Close()

	sessions := []attendance.WfhSession{}
	for rows.Next() {
		s, err := scanWfhSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wfh session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MarkStaleIncomplete implements attendance.WfhSessionRepository.
func (r *wfhSessionRepositoryImpl) MarkStaleIncomplete(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE wfh_sessions
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND date < $3
	`
	tag, err := q.Exec(ctx, query, attendance.WfhStatusIncomplete, attendance.WfhStatusActive, before)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale wfh sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
