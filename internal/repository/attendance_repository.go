package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classroll/attendance-api/internal/models"
)

// AttendanceRepository is the ledger store: one row per (date, class_name).
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts the day's record or wholly replaces its entries when one
// already exists for (date, class_name). The single INSERT .. ON CONFLICT
// statement plus the unique index is what keeps two concurrent writers from
// producing two records; there is no read-then-write window.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO attendance_records (id, date, class_name, entries, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (date, class_name)
        DO UPDATE SET entries = EXCLUDED.entries, updated_at = EXCLUDED.updated_at
        RETURNING id, date, class_name, entries, created_at, updated_at`

	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.Date, record.ClassName, record.Entries, record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}
	return &stored, nil
}

// ListRange returns every record for the class with date in [from, to]
// inclusive, ordered by date. Dates are zero-padded ISO strings so the text
// comparison is also the calendar ordering.
func (r *AttendanceRepository) ListRange(ctx context.Context, className, from, to string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, date, class_name, entries, created_at, updated_at
        FROM attendance_records
        WHERE class_name = $1 AND date >= $2 AND date <= $3
        ORDER BY date ASC`

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, className, from, to); err != nil {
		return nil, fmt.Errorf("list attendance range: %w", err)
	}
	return records, nil
}

// DeleteAll wipes the ledger. Used by the dev seed flow only.
func (r *AttendanceRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
		return fmt.Errorf("delete attendance records: %w", err)
	}
	return nil
}
