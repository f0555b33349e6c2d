package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classroll/attendance-api/internal/models"
)

// StudentRepository manages persistence for roster records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// UpsertBatch applies each element independently against the (class_name,
// roll) identity. Updates merge at field level: an omitted parentPhone keeps
// the stored value. Counts are reported per element rather than wrapping the
// batch in a transaction, so one bad element does not roll back the rest.
func (r *StudentRepository) UpsertBatch(ctx context.Context, inputs []models.StudentUpsert) (*models.BulkUpsertResult, error) {
	const query = `INSERT INTO students (id, roll, name, class_name, parent_phone, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        ON CONFLICT (class_name, roll)
        DO UPDATE SET name = EXCLUDED.name,
                parent_phone = COALESCE(EXCLUDED.parent_phone, students.parent_phone),
                updated_at = EXCLUDED.updated_at
        RETURNING (xmax = 0) AS inserted`

	result := &models.BulkUpsertResult{}
	for _, input := range inputs {
		now := time.Now().UTC()
		var inserted bool
		err := r.db.QueryRowxContext(ctx, query,
			uuid.NewString(), input.Roll, input.Name, input.ClassName, input.ParentPhone, now,
		).Scan(&inserted)
		if err != nil {
			return nil, fmt.Errorf("upsert student %s/%d: %w", input.ClassName, input.Roll, err)
		}
		if inserted {
			result.UpsertedCount++
		} else {
			result.ModifiedCount++
		}
	}
	return result, nil
}

// ListByClass returns students ordered by roll ascending. An empty className
// lists the whole roster, grouped by class.
func (r *StudentRepository) ListByClass(ctx context.Context, className string) ([]models.Student, error) {
	const base = `SELECT id, roll, name, class_name, parent_phone, created_at, updated_at FROM students`

	var students []models.Student
	var err error
	if className != "" {
		err = r.db.SelectContext(ctx, &students, base+` WHERE class_name = $1 ORDER BY roll ASC`, className)
	} else {
		err = r.db.SelectContext(ctx, &students, base+` ORDER BY class_name ASC, roll ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByIDs resolves roster records for the given ids. Missing ids are
// simply absent from the result; callers treat them as dangling references.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	if len(ids) == 0 {
		return map[string]models.Student{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, roll, name, class_name, parent_phone, created_at, updated_at
        FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build student lookup: %w", err)
	}
	query = r.db.Rebind(query)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("lookup students: %w", err)
	}
	byID := make(map[string]models.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	return byID, nil
}

// DeleteAll wipes the roster. Used by the dev seed flow only.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("delete students: %w", err)
	}
	return nil
}
