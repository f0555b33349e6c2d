package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/classroll/attendance-api/internal/models"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-index conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// TeacherRepository manages persistence for teacher accounts.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByEmail fetches a teacher by email. Returns sql.ErrNoRows when absent.
func (r *TeacherRepository) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	const query = `SELECT id, name, email, password_hash, phone, subject, created_at, updated_at
        FROM teachers WHERE email = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, email); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByID fetches a teacher by id. Returns sql.ErrNoRows when absent.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, name, email, password_hash, phone, subject, created_at, updated_at
        FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher. The unique index on email surfaces duplicate
// registrations as a unique violation.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, name, email, password_hash, phone, subject, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :phone, :subject, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// DeleteAll wipes the teacher store. Used by the dev seed flow only.
func (r *TeacherRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teachers`); err != nil {
		return fmt.Errorf("delete teachers: %w", err)
	}
	return nil
}
