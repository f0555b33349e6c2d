package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classroll/attendance-api/internal/models"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
)

type seedTeacherStore interface {
	DeleteAll(ctx context.Context) error
	Create(ctx context.Context, teacher *models.Teacher) error
}

type seedStudentStore interface {
	DeleteAll(ctx context.Context) error
	UpsertBatch(ctx context.Context, inputs []models.StudentUpsert) (*models.BulkUpsertResult, error)
	ListByClass(ctx context.Context, className string) ([]models.Student, error)
}

type seedLedger interface {
	DeleteAll(ctx context.Context) error
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
}

// SeedService wipes all three stores and loads fixed demo data. Exposed on
// an unauthenticated dev route, gated by configuration.
type SeedService struct {
	teachers seedTeacherStore
	students seedStudentStore
	ledger   seedLedger
	cache    *CacheService
	logger   *zap.Logger
}

// NewSeedService constructs the seed service.
func NewSeedService(teachers seedTeacherStore, students seedStudentStore, ledger seedLedger, cache *CacheService, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{teachers: teachers, students: students, ledger: ledger, cache: cache, logger: logger}
}

// SeedResult summarises what the reset inserted.
type SeedResult struct {
	Teachers          int    `json:"teachers"`
	Students          int    `json:"students"`
	AttendanceRecords int    `json:"attendanceRecords"`
	DemoEmail         string `json:"demoEmail"`
}

const (
	demoEmail    = "demo.teacher@classroll.dev"
	demoPassword = "password123"
	demoClass    = "Class 5-A"
)

// Reset wipes the stores and inserts the demo dataset.
func (s *SeedService) Reset(ctx context.Context) (*SeedResult, error) {
	for name, wipe := range map[string]func(context.Context) error{
		"attendance": s.ledger.DeleteAll,
		"students":   s.students.DeleteAll,
		"teachers":   s.teachers.DeleteAll,
	} {
		if err := wipe(ctx); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to wipe %s", name))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash demo password")
	}
	teacher := &models.Teacher{
		Name:         "Demo Teacher",
		Email:        demoEmail,
		PasswordHash: string(hash),
		Subject:      "Mathematics",
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed teacher")
	}

	phone := func(n int) *string {
		p := fmt.Sprintf("+1555010%04d", n)
		return &p
	}
	names := []string{"Aarav Shah", "Bianca Cruz", "Chen Wei", "Divya Nair", "Emil Novak", "Fatima Khan"}
	inputs := make([]models.StudentUpsert, len(names))
	for i, name := range names {
		inputs[i] = models.StudentUpsert{Roll: i + 1, Name: name, ClassName: demoClass, ParentPhone: phone(i + 1)}
	}
	if _, err := s.students.UpsertBatch(ctx, inputs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed students")
	}

	roster, err := s.students.ListByClass(ctx, demoClass)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload seeded roster")
	}

	dates := []string{"2026-08-17", "2026-08-18", "2026-08-19"}
	for day, date := range dates {
		entries := make(models.AttendanceEntries, 0, len(roster))
		for i, student := range roster {
			// A fixed rotation so the demo report has varied percentages.
			present := (i+day)%3 != 0
			entry := models.AttendanceEntry{StudentID: student.ID, Present: present}
			if !present {
				entry.Remarks = "unexcused"
			}
			entries = append(entries, entry)
		}
		record := &models.AttendanceRecord{Date: date, ClassName: demoClass, Entries: entries}
		if _, err := s.ledger.Upsert(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed attendance")
		}
	}

	if err := s.cache.Invalidate(ctx, "report:summary:*"); err != nil {
		s.logger.Warn("failed to invalidate summary cache after seed", zap.Error(err))
	}

	s.logger.Info("demo data seeded",
		zap.Int("students", len(roster)),
		zap.Int("days", len(dates)),
	)
	return &SeedResult{
		Teachers:          1,
		Students:          len(roster),
		AttendanceRecords: len(dates),
		DemoEmail:         demoEmail,
	}, nil
}
