package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/classroll/attendance-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v\nbody: %s", err, w.Body.String())
	}
	return out
}

type memLedger struct {
	mu      sync.Mutex
	records map[string]models.AttendanceRecord
}

func newMemLedger() *memLedger {
	return &memLedger{records: make(map[string]models.AttendanceRecord)}
}

func (m *memLedger) Upsert(_ context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.Date + "|" + record.ClassName
	stored, ok := m.records[key]
	if !ok {
		stored = models.AttendanceRecord{
			ID:        fmt.Sprintf("rec-%d", len(m.records)+1),
			Date:      record.Date,
			ClassName: record.ClassName,
		}
	}
	stored.Entries = record.Entries
	m.records[key] = stored
	return &stored, nil
}

func (m *memLedger) ListRange(_ context.Context, className, from, to string) ([]models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AttendanceRecord
	for _, record := range m.records {
		if record.ClassName == className && record.Date >= from && record.Date <= to {
			out = append(out, record)
		}
	}
	return out, nil
}

type memRoster struct {
	mu       sync.Mutex
	students map[string]models.Student
	nextID   int
}

func newMemRoster() *memRoster {
	return &memRoster{students: make(map[string]models.Student)}
}

func (m *memRoster) UpsertBatch(_ context.Context, inputs []models.StudentUpsert) (*models.BulkUpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := &models.BulkUpsertResult{}
	for _, in := range inputs {
		key := fmt.Sprintf("%s#%d", in.ClassName, in.Roll)
		var existingID string
		for id, s := range m.students {
			if fmt.Sprintf("%s#%d", s.ClassName, s.Roll) == key {
				existingID = id
				break
			}
		}
		if existingID != "" {
			student := m.students[existingID]
			student.Name = in.Name
			if in.ParentPhone != nil {
				student.ParentPhone = in.ParentPhone
			}
			m.students[existingID] = student
			result.ModifiedCount++
			continue
		}
		m.nextID++
		id := fmt.Sprintf("s-%d", m.nextID)
		m.students[id] = models.Student{
			ID:          id,
			Roll:        in.Roll,
			Name:        in.Name,
			ClassName:   in.ClassName,
			ParentPhone: in.ParentPhone,
		}
		result.UpsertedCount++
	}
	return result, nil
}

func (m *memRoster) ListByClass(_ context.Context, className string) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	for _, s := range m.students {
		if className == "" || s.ClassName == className {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memRoster) FindByIDs(_ context.Context, ids []string) (map[string]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Student)
	for _, id := range ids {
		if s, ok := m.students[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type memTeachers struct {
	mu      sync.Mutex
	byEmail map[string]*models.Teacher
	nextID  int
}

func newMemTeachers() *memTeachers {
	return &memTeachers{byEmail: make(map[string]*models.Teacher)}
}

func (m *memTeachers) FindByEmail(_ context.Context, email string) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	teacher, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *teacher
	return &copied, nil
}

func (m *memTeachers) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, teacher := range m.byEmail {
		if teacher.ID == id {
			copied := *teacher
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memTeachers) Create(_ context.Context, teacher *models.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[teacher.Email]; exists {
		return &pq.Error{Code: "23505", Constraint: "teachers_email_key"}
	}
	m.nextID++
	teacher.ID = fmt.Sprintf("t-%d", m.nextID)
	stored := *teacher
	m.byEmail[teacher.Email] = &stored
	return nil
}
