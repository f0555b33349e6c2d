package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classroll/attendance-api/internal/models"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
)

type studentStore interface {
	UpsertBatch(ctx context.Context, inputs []models.StudentUpsert) (*models.BulkUpsertResult, error)
	ListByClass(ctx context.Context, className string) ([]models.Student, error)
}

// StudentService coordinates roster reads and bulk writes.
type StudentService struct {
	repo      studentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// BulkUpsertRequest carries the roster batch.
type BulkUpsertRequest struct {
	Students []StudentInput `json:"students" validate:"required,min=1,dive"`
}

// StudentInput is one roster element. Roll, name and className identify and
// describe the student; parentPhone is optional and merged on update.
type StudentInput struct {
	Roll        int     `json:"roll" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	ClassName   string  `json:"className" validate:"required"`
	ParentPhone *string `json:"parentPhone"`
}

// UpsertBatch validates each element and applies the batch. Elements are
// applied independently; the result reports modified vs upserted counts.
func (s *StudentService) UpsertBatch(ctx context.Context, req BulkUpsertRequest) (*models.BulkUpsertResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "each student needs roll, name and className")
	}

	inputs := make([]models.StudentUpsert, len(req.Students))
	for i, in := range req.Students {
		inputs[i] = models.StudentUpsert{
			Roll:        in.Roll,
			Name:        in.Name,
			ClassName:   in.ClassName,
			ParentPhone: in.ParentPhone,
		}
	}

	result, err := s.repo.UpsertBatch(ctx, inputs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert students")
	}

	s.logger.Info("roster batch applied",
		zap.Int("modified", result.ModifiedCount),
		zap.Int("upserted", result.UpsertedCount),
	)
	return result, nil
}

// ListByClass returns the roster sorted by roll; className may be empty.
func (s *StudentService) ListByClass(ctx context.Context, className string) ([]models.Student, error) {
	students, err := s.repo.ListByClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}
