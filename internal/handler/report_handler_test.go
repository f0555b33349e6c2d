package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-api/internal/models"
	"github.com/classroll/attendance-api/internal/service"
)

func newReportRouter(t *testing.T) (*gin.Engine, *memLedger, *memRoster) {
	t.Helper()
	ledger := newMemLedger()
	roster := newMemRoster()
	svc := service.NewReportService(ledger, roster, nil, nil)
	h := NewReportHandler(svc)
	r := gin.New()
	r.GET("/reports/summary", h.Summary)
	r.GET("/reports/summary/export", h.Export)
	return r, ledger, roster
}

func seedReportData(t *testing.T, ledger *memLedger, roster *memRoster) {
	t.Helper()
	_, err := roster.UpsertBatch(context.Background(), []models.StudentUpsert{
		{Roll: 1, Name: "Aarav Shah", ClassName: "Class 5-A"},
		{Roll: 2, Name: "Bianca Cruz", ClassName: "Class 5-A"},
	})
	require.NoError(t, err)

	records := []models.AttendanceRecord{
		{Date: "2026-03-02", ClassName: "Class 5-A", Entries: models.AttendanceEntries{
			{StudentID: "s-1", Present: true},
			{StudentID: "s-2", Present: false},
		}},
		{Date: "2026-03-03", ClassName: "Class 5-A", Entries: models.AttendanceEntries{
			{StudentID: "s-1", Present: true},
			{StudentID: "s-2", Present: true},
		}},
		{Date: "2026-03-04", ClassName: "Class 5-A", Entries: models.AttendanceEntries{
			{StudentID: "s-1", Present: false},
		}},
	}
	for i := range records {
		_, err := ledger.Upsert(context.Background(), &records[i])
		require.NoError(t, err)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	r, ledger, roster := newReportRouter(t)
	seedReportData(t, ledger, roster)

	w := performRequest(r, http.MethodGet,
		"/reports/summary?className=Class+5-A&from=2026-03-01&to=2026-03-31", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 60.0, body["average"])
	assert.Equal(t, 0.0, body["perfectCount"])
	assert.Equal(t, 2.0, body["below75Count"])
	assert.Equal(t, 0.0, body["chronicAbsenceCount"])
	assert.Equal(t, 3.0, body["days"])
	assert.Equal(t, 2.0, body["totalStudentsTracked"])
}

func TestSummaryEndpointMissingParams(t *testing.T) {
	r, _, _ := newReportRouter(t)

	paths := []string{
		"/reports/summary",
		"/reports/summary?className=Class+5-A",
		"/reports/summary?className=Class+5-A&from=2026-03-01",
		"/reports/summary?from=2026-03-01&to=2026-03-31",
	}
	for _, path := range paths {
		w := performRequest(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		body := decodeBody(t, w)
		assert.NotEmpty(t, body["message"], path)
	}
}

func TestSummaryEndpointEmptyRange(t *testing.T) {
	r, ledger, roster := newReportRouter(t)
	seedReportData(t, ledger, roster)

	w := performRequest(r, http.MethodGet,
		"/reports/summary?className=Class+5-A&from=2025-01-01&to=2025-01-31", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 0.0, body["average"])
	assert.Equal(t, 0.0, body["days"])
	assert.Equal(t, 0.0, body["totalStudentsTracked"])
}

func TestExportEndpointCSV(t *testing.T) {
	r, ledger, roster := newReportRouter(t)
	seedReportData(t, ledger, roster)

	w := performRequest(r, http.MethodGet,
		"/reports/summary/export?className=Class+5-A&from=2026-03-01&to=2026-03-31", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Aarav Shah")
}

func TestExportEndpointUnknownFormat(t *testing.T) {
	r, _, _ := newReportRouter(t)

	w := performRequest(r, http.MethodGet,
		"/reports/summary/export?className=Class+5-A&from=2026-03-01&to=2026-03-31&format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
