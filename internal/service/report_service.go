package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/classroll/attendance-api/internal/models"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
	"github.com/classroll/attendance-api/pkg/export"
)

type rosterResolver interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Student, error)
}

// ReportService computes attendance statistics for one class over an
// inclusive [from, to] date range. It reads the ledger as-is: a day without
// a submitted record contributes nothing, and a student missing from a
// day's entries is not treated as absent.
type ReportService struct {
	ledger attendanceLedger
	roster rosterResolver
	cache  *CacheService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(ledger attendanceLedger, roster rosterResolver, cache *CacheService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		ledger: ledger,
		roster: roster,
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

type studentTally struct {
	present int
	total   int
}

// Summary aggregates the class over the range. All-zero output (not an
// error) when no records fall inside the range.
func (s *ReportService) Summary(ctx context.Context, className, from, to string) (*models.AttendanceSummary, error) {
	if err := validateSummaryParams(className, from, to); err != nil {
		return nil, err
	}

	cacheKey := summaryCacheKey(className, from, to)
	cached := &models.AttendanceSummary{}
	if hit, _ := s.cache.Get(ctx, cacheKey, cached); hit {
		return cached, nil
	}

	records, err := s.ledger.ListRange(ctx, className, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	tallies := tallyByStudent(records)

	summary := &models.AttendanceSummary{Days: len(records)}
	sumPresent, sumTotal := 0, 0
	for _, t := range tallies {
		if t.total == 0 {
			continue
		}
		summary.TotalStudentsTracked++
		sumPresent += t.present
		sumTotal += t.total

		pct := float64(t.present) / float64(t.total) * 100
		if t.present == t.total {
			summary.PerfectCount++
		}
		if pct < 75 {
			summary.Below75Count++
		}
		if pct < 50 {
			summary.ChronicAbsenceCount++
		}
	}
	if sumTotal > 0 {
		summary.Average = round1(float64(sumPresent) / float64(sumTotal) * 100)
	}

	if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
		s.logger.Warn("summary cache write failed", zap.String("key", cacheKey), zap.Error(err))
	}
	return summary, nil
}

// StudentBreakdown returns per-student rows for the range, resolved against
// the roster. A studentId that no longer resolves is kept with an empty
// name: dangling references are a data-quality warning, not an error.
func (s *ReportService) StudentBreakdown(ctx context.Context, className, from, to string) ([]models.StudentAttendanceRow, error) {
	if err := validateSummaryParams(className, from, to); err != nil {
		return nil, err
	}

	records, err := s.ledger.ListRange(ctx, className, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	tallies := tallyByStudent(records)
	ids := make([]string, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}

	resolved, err := s.roster.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve students")
	}

	rows := make([]models.StudentAttendanceRow, 0, len(tallies))
	for id, t := range tallies {
		if t.total == 0 {
			continue
		}
		row := models.StudentAttendanceRow{
			StudentID: id,
			Present:   t.present,
			Total:     t.total,
			Percent:   round1(float64(t.present) / float64(t.total) * 100),
		}
		if student, ok := resolved[id]; ok {
			row.Roll = student.Roll
			row.Name = student.Name
		} else {
			s.logger.Warn("attendance entry references unknown student",
				zap.String("student_id", id),
				zap.String("class", className),
			)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Roll != rows[j].Roll {
			return rows[i].Roll < rows[j].Roll
		}
		return rows[i].StudentID < rows[j].StudentID
	})
	return rows, nil
}

// ExportFormat names a supported export rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult bundles rendered bytes with download metadata.
type ExportResult struct {
	Content     []byte
	Filename    string
	ContentType string
}

// Export renders the per-student breakdown as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, className, from, to string, format ExportFormat) (*ExportResult, error) {
	rows, err := s.StudentBreakdown(ctx, className, from, to)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Attendance %s (%s to %s)", className, from, to),
		Headers: []string{"Roll", "Name", "Student ID", "Present", "Total", "Percent"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", row.Roll),
			row.Name,
			row.StudentID,
			fmt.Sprintf("%d", row.Present),
			fmt.Sprintf("%d", row.Total),
			fmt.Sprintf("%.1f", row.Percent),
		})
	}

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("attendance-%s-%s-%s.csv", className, from, to),
			ContentType: "text/csv",
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("attendance-%s-%s-%s.pdf", className, from, to),
			ContentType: "application/pdf",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// tallyByStudent walks every entry of every record: present increments when
// the flag is true, total increments unconditionally. Entries are keyed by
// studentId whether or not the student still exists in the roster.
func tallyByStudent(records []models.AttendanceRecord) map[string]studentTally {
	tallies := make(map[string]studentTally)
	for _, record := range records {
		for _, entry := range record.Entries {
			t := tallies[entry.StudentID]
			t.total++
			if entry.Present {
				t.present++
			}
			tallies[entry.StudentID] = t
		}
	}
	return tallies
}

func validateSummaryParams(className, from, to string) error {
	if className == "" || from == "" || to == "" {
		return appErrors.Clone(appErrors.ErrValidation, "className, from and to are required")
	}
	if err := ValidateISODate(from); err != nil {
		return err
	}
	if err := ValidateISODate(to); err != nil {
		return err
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
