package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveDayRepositoryImpl struct {
	db *database.DB
}

func NewLeaveDayRepository(db *database.DB) attendance.LeaveDayRepository {
	return &leaveDayRepositoryImpl{db: db}
}

// ListByEmployeeAndRange implements attendance.LeaveDayRepository.
func (r *leaveDayRepositoryImpl) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.LeaveDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date
		FROM leave_days
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave days: %w", err)
	}
	defer rows.Close()

	days := []attendance.LeaveDay{}
	for rows.Next() {
		var d attendance.LeaveDay
		if err := rows.Scan(&d.EmployeeID, &d.Date); err != nil {
			return nil, fmt.Errorf("failed to scan leave day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// BulkInsert implements attendance.LeaveDayRepository.
func (r *leaveDayRepositoryImpl) BulkInsert(ctx context.Context, days []attendance.LeaveDay) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_days (employee_id, date)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, date) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, d := range days {
		batch.Queue(query, d.EmployeeID, d.Date)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range days {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert leave day: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}
