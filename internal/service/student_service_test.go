package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-api/internal/models"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
)

type fakeStudentStore struct {
	mu     sync.Mutex
	byKey  map[string]models.Student
	nextID int
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{byKey: make(map[string]models.Student)}
}

func studentKey(className string, roll int) string {
	return fmt.Sprintf("%s#%d", className, roll)
}

func (f *fakeStudentStore) UpsertBatch(_ context.Context, inputs []models.StudentUpsert) (*models.BulkUpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &models.BulkUpsertResult{}
	for _, in := range inputs {
		key := studentKey(in.ClassName, in.Roll)
		existing, ok := f.byKey[key]
		if ok {
			existing.Name = in.Name
			if in.ParentPhone != nil {
				existing.ParentPhone = in.ParentPhone
			}
			f.byKey[key] = existing
			result.ModifiedCount++
			continue
		}
		f.nextID++
		f.byKey[key] = models.Student{
			ID:          fmt.Sprintf("s-%d", f.nextID),
			Roll:        in.Roll,
			Name:        in.Name,
			ClassName:   in.ClassName,
			ParentPhone: in.ParentPhone,
		}
		result.UpsertedCount++
	}
	return result, nil
}

func (f *fakeStudentStore) ListByClass(_ context.Context, className string) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Student
	for _, student := range f.byKey {
		if className == "" || student.ClassName == className {
			out = append(out, student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Roll < out[j].Roll })
	return out, nil
}

func TestStudentUpsertBatchKeysOnClassAndRoll(t *testing.T) {
	store := newFakeStudentStore()
	svc := NewStudentService(store, nil, nil)

	first, err := svc.UpsertBatch(context.Background(), BulkUpsertRequest{Students: []StudentInput{
		{Roll: 1, Name: "Aarav Shah", ClassName: "Class 5-A"},
		{Roll: 2, Name: "Bianca Cruz", ClassName: "Class 5-A"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, first.UpsertedCount)
	assert.Equal(t, 0, first.ModifiedCount)

	// Same (className, roll) updates in place; a new roll creates a row.
	second, err := svc.UpsertBatch(context.Background(), BulkUpsertRequest{Students: []StudentInput{
		{Roll: 1, Name: "Aarav S. Shah", ClassName: "Class 5-A"},
		{Roll: 3, Name: "Chen Wei", ClassName: "Class 5-A"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, second.UpsertedCount)
	assert.Equal(t, 1, second.ModifiedCount)

	students, err := svc.ListByClass(context.Background(), "Class 5-A")
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "Aarav S. Shah", students[0].Name)
}

func TestStudentUpsertBatchValidation(t *testing.T) {
	svc := NewStudentService(newFakeStudentStore(), nil, nil)

	cases := []struct {
		name string
		req  BulkUpsertRequest
	}{
		{"empty batch", BulkUpsertRequest{}},
		{"zero roll", BulkUpsertRequest{Students: []StudentInput{{Roll: 0, Name: "X", ClassName: "Class 5-A"}}}},
		{"negative roll", BulkUpsertRequest{Students: []StudentInput{{Roll: -3, Name: "X", ClassName: "Class 5-A"}}}},
		{"missing name", BulkUpsertRequest{Students: []StudentInput{{Roll: 1, ClassName: "Class 5-A"}}}},
		{"missing class", BulkUpsertRequest{Students: []StudentInput{{Roll: 1, Name: "X"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpsertBatch(context.Background(), tc.req)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.Status)
		})
	}
}

func TestStudentListEmptyClassIsEmptySlice(t *testing.T) {
	svc := NewStudentService(newFakeStudentStore(), nil, nil)

	students, err := svc.ListByClass(context.Background(), "Class 9-Z")
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}
