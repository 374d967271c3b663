package ports

import (
	"context"
	"io"

	"github.com/docvoice/docvoice/internal/core/domain"
)

// DocumentIntelligence is the remote extraction/summarization/translation/QA
// service. Every method is one request/response call; failures come back as
// typed domain errors with the service-reported detail preserved.
type DocumentIntelligence interface {
	Extract(ctx context.Context, filename string, body io.Reader) (string, error)
	Summarize(ctx context.Context, text, userID string) (string, error)
	Translate(ctx context.Context, text, langCode string) (string, error)
	Ask(ctx context.Context, question, contextText string) (string, error)
}

// AuthService is the remote identity/password store. Credential hashing is
// its job; the client never keeps a password beyond the call.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (domain.Session, error)
}

// HistoryService lists a user's past summaries in server-defined order.
type HistoryService interface {
	List(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}

// SessionVault is the durable client storage for exactly one session
// record. Save replaces atomically, Delete never fails on absence, and a
// record that no longer parses is reported as domain.ErrCorruptedSession.
type SessionVault interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context) error
}

// Utterance is one in-flight spoken text. Done fires exactly once, with a
// nil error on natural completion and a non-nil error on engine failure.
// Cancel is idempotent and also resolves Done.
type Utterance interface {
	Pause() error
	Resume() error
	Cancel()
	Done() <-chan error
}

// SpeechEngine is the local audio device. Voice enumeration is
// asynchronous: Ready reports false until it finishes. Unsupported
// reports true once the engine is known to be missing entirely; unlike
// readiness it never clears for the rest of the session.
type SpeechEngine interface {
	Ready() bool
	Unsupported() bool
	Voices() []domain.Voice
	Speak(text string, voice domain.Voice) (Utterance, error)
}
