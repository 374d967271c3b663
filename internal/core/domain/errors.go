package domain

import (
	"errors"
	"fmt"
)

var (
	// Local preconditions, checked before any transport call.
	ErrInputMissing        = errors.New("input missing")
	ErrBusy                = errors.New("operation in progress")
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// Remote call outcomes.
	ErrTransport            = errors.New("service unreachable")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrConflict             = errors.New("already exists")

	// Speech engine.
	ErrEngineNotReady         = errors.New("speech engine not ready")
	ErrUnsupportedEnvironment = errors.New("speech engine unavailable")

	// Session restore.
	ErrCorruptedSession = errors.New("corrupted session record")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UserMessage converts any failure into the text shown to the user.
// Nothing propagates as an uncaught fault; the shell renders this string.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputMissing):
		return "Please provide the required input first."
	case errors.Is(err, ErrBusy):
		return "Another operation is still running."
	case errors.Is(err, ErrUnsupportedLanguage):
		return "That language is not supported."
	case errors.Is(err, ErrEngineNotReady):
		return "Speech engine is still starting, try again."
	case errors.Is(err, ErrUnsupportedEnvironment):
		return "Text-to-speech is not available on this machine."
	default:
		return err.Error()
	}
}
