package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classroll/attendance-api/internal/models"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
)

type attendanceLedger interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	ListRange(ctx context.Context, className, from, to string) ([]models.AttendanceRecord, error)
}

// AttendanceService owns the mark-attendance workflow: validation up front,
// then a single atomic replace-or-insert against the ledger.
type AttendanceService struct {
	repo      attendanceLedger
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceLedger, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// EntryInput is one student's presence in the mark payload. Present is a
// pointer so a missing flag is a validation failure rather than a silent
// false.
type EntryInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Present   *bool  `json:"present" validate:"required"`
	Remarks   string `json:"remarks"`
}

// MarkAttendanceRequest is the mark payload.
type MarkAttendanceRequest struct {
	Date      string       `json:"date" validate:"required"`
	ClassName string       `json:"className" validate:"required"`
	Entries   []EntryInput `json:"entries" validate:"required,min=1,dive"`
}

// MarkResult carries the id of the day's record, new or replaced.
type MarkResult struct {
	AttendanceID string `json:"attendanceId"`
}

// Mark records attendance for one class on one day. A record already present
// for (date, className) has its entries wholly replaced; the call is
// idempotent for identical input and safe to retry. Nothing is written when
// any entry is malformed.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*MarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date, className and well-formed entries are required")
	}
	if err := ValidateISODate(req.Date); err != nil {
		return nil, err
	}

	entries := make(models.AttendanceEntries, len(req.Entries))
	for i, entry := range req.Entries {
		entries[i] = models.AttendanceEntry{
			StudentID: entry.StudentID,
			Present:   *entry.Present,
			Remarks:   entry.Remarks,
		}
	}

	record := &models.AttendanceRecord{
		Date:      req.Date,
		ClassName: req.ClassName,
		Entries:   entries,
	}
	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	// Any cached summary touching this class is now stale.
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, summaryCachePattern(req.ClassName)); err != nil {
			s.logger.Warn("summary cache invalidation failed", zap.String("class", req.ClassName), zap.Error(err))
		}
	}

	s.metrics.ObserveMark(req.ClassName)
	s.logger.Info("attendance marked",
		zap.String("date", stored.Date),
		zap.String("class", stored.ClassName),
		zap.Int("entries", len(stored.Entries)),
	)
	return &MarkResult{AttendanceID: stored.ID}, nil
}

// ValidateISODate enforces zero-padded "YYYY-MM-DD" form. Anything else
// would corrupt the lexicographic range queries the report engine relies on.
func ValidateISODate(raw string) error {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil || parsed.Format("2006-01-02") != raw {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date %q must use YYYY-MM-DD form", raw))
	}
	return nil
}

func summaryCachePattern(className string) string {
	return fmt.Sprintf("report:summary:%s:*", className)
}

func summaryCacheKey(className, from, to string) string {
	return fmt.Sprintf("report:summary:%s:%s:%s", className, from, to)
}
