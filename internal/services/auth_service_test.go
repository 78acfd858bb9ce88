package services

import (
	"strings"
	"testing"
	"time"

	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
)

type stubAuthStore struct {
	users map[string]*models.User
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{users: map[string]*models.User{}}
}

func (s *stubAuthStore) FindUserByEmail(email string) *models.User {
	return s.users[strings.ToLower(email)]
}

func (s *stubAuthStore) AddUser(u *models.User) {
	s.users[strings.ToLower(u.Email)] = u
}

func fakeSigner(uid, email string, ttl time.Duration) (string, error) {
	return "tok-" + uid, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, fakeSigner)

	res, err := svc.Register("staff@example.com", "Secret123!")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" || res.UserID == "" {
		t.Fatalf("unexpected register result: %+v", res)
	}

	login, err := svc.Login("staff@example.com", "Secret123!")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if login.UserID != res.UserID {
		t.Fatalf("login user = %q, want %q", login.UserID, res.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, fakeSigner)
	if _, err := svc.Register("staff@example.com", "pw"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	_, err := svc.Register("staff@example.com", "pw2")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, fakeSigner)
	if _, err := svc.Register("staff@example.com", "right"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	_, err := svc.Login("staff@example.com", "wrong")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	_, err = svc.Login("nobody@example.com", "x")
	se, ok = AsServiceError(err)
	if !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("err = %v, want unauthorized for unknown user", err)
	}
}
