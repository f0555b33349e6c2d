package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classroll/attendance-api/internal/models"
	appErrors "github.com/classroll/attendance-api/pkg/errors"
)

type fakeTeacherStore struct {
	mu       sync.Mutex
	byEmail  map[string]*models.Teacher
	nextID   int
	failWith error
}

func newFakeTeacherStore() *fakeTeacherStore {
	return &fakeTeacherStore{byEmail: make(map[string]*models.Teacher)}
}

func (f *fakeTeacherStore) FindByEmail(_ context.Context, email string) (*models.Teacher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	teacher, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *teacher
	return &copied, nil
}

func (f *fakeTeacherStore) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, teacher := range f.byEmail {
		if teacher.ID == id {
			copied := *teacher
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTeacherStore) Create(_ context.Context, teacher *models.Teacher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, exists := f.byEmail[teacher.Email]; exists {
		return &pq.Error{Code: "23505", Constraint: "teachers_email_key"}
	}
	f.nextID++
	teacher.ID = fmt.Sprintf("t-%d", f.nextID)
	stored := *teacher
	f.byEmail[teacher.Email] = &stored
	return nil
}

func newTestAuthService(store teacherStore) *AuthService {
	return NewAuthService(store, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "attendance-api-test",
	})
}

func TestRegisterTeacherHashesPassword(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	teacher, err := svc.RegisterTeacher(context.Background(), RegisterTeacherRequest{
		Name:     "Priya Nair",
		Email:    "priya@school.test",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, teacher.ID)
	assert.NotEqual(t, "password123", teacher.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte("password123")))
}

func TestRegisterTeacherDuplicateEmail(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	req := RegisterTeacherRequest{Name: "Priya Nair", Email: "priya@school.test", Password: "password123"}
	_, err := svc.RegisterTeacher(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.RegisterTeacher(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErr.Code)
}

func TestRegisterTeacherValidation(t *testing.T) {
	svc := newTestAuthService(newFakeTeacherStore())

	cases := []RegisterTeacherRequest{
		{Email: "priya@school.test", Password: "password123"},
		{Name: "Priya Nair", Password: "password123"},
		{Name: "Priya Nair", Email: "not-an-email", Password: "password123"},
		{Name: "Priya Nair", Email: "priya@school.test", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.RegisterTeacher(context.Background(), req)
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Status)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	_, err := svc.RegisterTeacher(context.Background(), RegisterTeacherRequest{
		Name:     "Priya Nair",
		Email:    "priya@school.test",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "priya@school.test", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "priya@school.test", resp.Teacher.Email)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Teacher.ID, claims.TeacherID)
	assert.Equal(t, "attendance-api-test", claims.Issuer)
}

func TestLoginBadCredentialsAreBadRequests(t *testing.T) {
	store := newFakeTeacherStore()
	svc := newTestAuthService(store)

	_, err := svc.RegisterTeacher(context.Background(), RegisterTeacherRequest{
		Name:     "Priya Nair",
		Email:    "priya@school.test",
		Password: "password123",
	})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "nobody@school.test", Password: "password123"},
		{Email: "priya@school.test", Password: "wrong-password"},
	} {
		_, err := svc.Login(context.Background(), req)
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Status)
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(newFakeTeacherStore())
	other := NewAuthService(newFakeTeacherStore(), nil, nil, AuthConfig{
		TokenSecret: "different-secret",
		TokenExpiry: time.Hour,
	})

	token, err := other.generateToken(&models.Teacher{ID: "t-1", Email: "x@school.test", Name: "X"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestAuthService(newFakeTeacherStore())
	// The constructor floors non-positive expiries, so force one afterwards.
	svc.config.TokenExpiry = -time.Minute

	token, err := svc.generateToken(&models.Teacher{ID: "t-1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}
