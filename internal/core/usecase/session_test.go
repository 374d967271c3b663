package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docvoice/docvoice/internal/core/domain"
)

type authFake struct {
	registerFn func(ctx context.Context, username, password string) error
	loginFn    func(ctx context.Context, username, password string) (domain.Session, error)
	calls      int
}

func (f *authFake) Register(ctx context.Context, username, password string) error {
	f.calls++
	if f.registerFn == nil {
		return errors.New("unexpected register call")
	}
	return f.registerFn(ctx, username, password)
}

func (f *authFake) Login(ctx context.Context, username, password string) (domain.Session, error) {
	f.calls++
	if f.loginFn == nil {
		return domain.Session{}, errors.New("unexpected login call")
	}
	return f.loginFn(ctx, username, password)
}

type vaultFake struct {
	mu      sync.Mutex
	record  *domain.Session
	loadErr error
	saves   int
	deletes int
}

func (f *vaultFake) Load(_ context.Context) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.record == nil {
		return nil, nil
	}
	record := *f.record
	return &record, nil
}

func (f *vaultFake) Save(_ context.Context, session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record = &session
	f.saves++
	return nil
}

func (f *vaultFake) Delete(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record = nil
	f.deletes++
	return nil
}

func newTestSessionManager(auth *authFake, vault *vaultFake, svc *historySvcFake) (*SessionManager, *HistoryStore) {
	if svc == nil {
		svc = &historySvcFake{}
	}
	history := NewHistoryStore(svc, nil)
	return NewSessionManager(auth, vault, history), history
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestLoginRejectsEmptyCredentialsLocally(t *testing.T) {
	auth := &authFake{}
	m, _ := newTestSessionManager(auth, &vaultFake{}, nil)

	if _, err := m.Login(context.Background(), "  ", "pw"); !domain.IsKind(err, domain.ErrValidation) {
		t.Errorf("empty username: %v, want validation kind", err)
	}
	if _, err := m.Login(context.Background(), "alice", ""); !domain.IsKind(err, domain.ErrValidation) {
		t.Errorf("empty password: %v, want validation kind", err)
	}
	if err := m.Register(context.Background(), "", ""); !domain.IsKind(err, domain.ErrValidation) {
		t.Errorf("empty register: %v, want validation kind", err)
	}
	if auth.calls != 0 {
		t.Errorf("auth service called %d times for empty credentials", auth.calls)
	}
}

func TestLoginEstablishesAndPersistsSession(t *testing.T) {
	auth := &authFake{
		loginFn: func(_ context.Context, username, password string) (domain.Session, error) {
			if username != "alice" || password != "pw" {
				t.Errorf("credentials forwarded as %q/%q", username, password)
			}
			return domain.Session{UserID: "u1", DisplayName: "Alice", Token: "tok"}, nil
		},
	}
	vault := &vaultFake{}
	svc := &historySvcFake{entries: []domain.HistoryEntry{{ID: "1", Summary: "past"}}}
	m, history := newTestSessionManager(auth, vault, svc)

	session, err := m.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.UserID != "u1" {
		t.Errorf("session = %+v", session)
	}
	if current := m.Current(); current == nil || current.UserID != "u1" {
		t.Errorf("Current() = %+v", current)
	}
	if vault.saves != 1 || vault.record == nil || vault.record.UserID != "u1" {
		t.Errorf("vault saves=%d record=%+v", vault.saves, vault.record)
	}
	if entries := history.Entries(); len(entries) != 1 {
		t.Errorf("login did not refresh history: %+v", entries)
	}
}

func TestLoginFailurePassesServiceDetailThrough(t *testing.T) {
	auth := &authFake{
		loginFn: func(_ context.Context, _, _ string) (domain.Session, error) {
			return domain.Session{}, domain.WrapError(domain.ErrAuthenticationFailed, "login",
				errors.New("Invalid username or password"))
		},
	}
	vault := &vaultFake{}
	m, _ := newTestSessionManager(auth, vault, nil)

	_, err := m.Login(context.Background(), "alice", "wrong")
	if !domain.IsKind(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want authentication kind", err)
	}
	if m.Current() != nil {
		t.Error("failed login left a session")
	}
	if vault.saves != 0 {
		t.Error("failed login wrote a session record")
	}
}

func TestRestoreSession(t *testing.T) {
	vault := &vaultFake{record: &domain.Session{UserID: "u1", DisplayName: "Alice", Token: "opaque"}}
	svc := &historySvcFake{entries: []domain.HistoryEntry{{ID: "1"}}}
	m, history := newTestSessionManager(&authFake{}, vault, svc)

	session, err := m.RestoreSession(context.Background())
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if session == nil || session.UserID != "u1" {
		t.Fatalf("session = %+v", session)
	}
	if current := m.Current(); current == nil || current.UserID != "u1" {
		t.Errorf("Current() = %+v", current)
	}
	if entries := history.Entries(); len(entries) != 1 {
		t.Errorf("restore did not refresh history: %+v", entries)
	}
}

func TestRestoreSessionNoRecord(t *testing.T) {
	m, _ := newTestSessionManager(&authFake{}, &vaultFake{}, nil)

	session, err := m.RestoreSession(context.Background())
	if err != nil || session != nil {
		t.Fatalf("RestoreSession = %+v, %v; want logged out without error", session, err)
	}
}

func TestRestoreSessionCorruptedRecordRecoversSilently(t *testing.T) {
	vault := &vaultFake{loadErr: domain.WrapError(domain.ErrCorruptedSession, "vault",
		errors.New("invalid character"))}
	m, _ := newTestSessionManager(&authFake{}, vault, nil)

	session, err := m.RestoreSession(context.Background())
	if err != nil {
		t.Fatalf("corrupted record surfaced an error: %v", err)
	}
	if session != nil {
		t.Fatalf("session = %+v, want logged out", session)
	}
	if vault.deletes != 1 {
		t.Errorf("corrupted record not deleted, deletes = %d", vault.deletes)
	}
}

func TestRestoreSessionExpiredTokenDiscarded(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))
	vault := &vaultFake{record: &domain.Session{UserID: "u1", Token: expired}}
	m, _ := newTestSessionManager(&authFake{}, vault, nil)

	session, err := m.RestoreSession(context.Background())
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if session != nil {
		t.Fatalf("expired token restored a session: %+v", session)
	}
	if vault.deletes != 1 {
		t.Errorf("expired record not deleted, deletes = %d", vault.deletes)
	}
}

func TestRestoreSessionValidTokenAccepted(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	vault := &vaultFake{record: &domain.Session{UserID: "u1", Token: valid}}
	m, _ := newTestSessionManager(&authFake{}, vault, nil)

	session, err := m.RestoreSession(context.Background())
	if err != nil || session == nil {
		t.Fatalf("RestoreSession = %+v, %v", session, err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	auth := &authFake{
		loginFn: func(_ context.Context, _, _ string) (domain.Session, error) {
			return domain.Session{UserID: "u1", Token: "tok"}, nil
		},
	}
	vault := &vaultFake{}
	svc := &historySvcFake{entries: []domain.HistoryEntry{{ID: "1"}}}
	m, history := newTestSessionManager(auth, vault, svc)

	if _, err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if m.Current() != nil {
		t.Error("Current() non-nil after logout")
	}
	if entries := history.Entries(); len(entries) != 0 {
		t.Errorf("history cache survived logout: %+v", entries)
	}
	if vault.record != nil {
		t.Error("session record survived logout")
	}
}
