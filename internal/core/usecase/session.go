package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/core/ports"
)

// SessionManager owns login, registration, logout, and persisted-session
// restoration. It is the only writer of the durable session record.
type SessionManager struct {
	auth    ports.AuthService
	vault   ports.SessionVault
	history *HistoryStore

	mu      sync.RWMutex
	current *domain.Session
}

func NewSessionManager(auth ports.AuthService, vault ports.SessionVault, history *HistoryStore) *SessionManager {
	return &SessionManager{
		auth:    auth,
		vault:   vault,
		history: history,
	}
}

// Current returns the active session, nil when logged out.
func (m *SessionManager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	session := *m.current
	return &session
}

// Register creates an account. Empty fields fail locally before any
// network call; service rejections (taken username) pass through verbatim.
func (m *SessionManager) Register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	return m.auth.Register(ctx, username, password)
}

// Login authenticates, establishes the session, persists the minimal
// record, and refreshes history. The password is not kept beyond the call.
func (m *SessionManager) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return domain.Session{}, err
	}

	session, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}

	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()

	if err := m.vault.Save(ctx, session); err != nil {
		// Login still succeeded; only restart persistence is degraded.
		slog.Warn("session_persist_failed", "user_id", session.UserID, "error", err)
	}
	_ = m.history.Refresh(ctx, session.UserID)

	return session, nil
}

// RestoreSession re-establishes a persisted session at startup. A record
// that fails to parse, or whose token has expired, is deleted and the
// user ends up logged out without any surfaced error.
func (m *SessionManager) RestoreSession(ctx context.Context) (*domain.Session, error) {
	session, err := m.vault.Load(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrCorruptedSession) {
			slog.Warn("session_record_corrupted", "error", err)
			if delErr := m.vault.Delete(ctx); delErr != nil {
				slog.Warn("session_record_delete_failed", "error", delErr)
			}
			return nil, nil
		}
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if tokenExpired(session.Token) {
		slog.Info("session_token_expired", "user_id", session.UserID)
		if delErr := m.vault.Delete(ctx); delErr != nil {
			slog.Warn("session_record_delete_failed", "error", delErr)
		}
		return nil, nil
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	_ = m.history.Refresh(ctx, session.UserID)
	return session, nil
}

// Logout clears the session, the history cache, and the durable record.
// An operation already in flight keeps the user id it captured.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.history.Clear()
	return m.vault.Delete(ctx)
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return domain.WrapError(domain.ErrValidation, "credentials", errors.New("username is required"))
	}
	if password == "" {
		return domain.WrapError(domain.ErrValidation, "credentials", errors.New("password is required"))
	}
	return nil
}

// tokenExpired inspects a JWT session token's exp claim without verifying
// the signature; verification belongs to the service. Opaque non-JWT
// tokens are kept as-is.
func tokenExpired(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
