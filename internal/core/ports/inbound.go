package ports

import (
	"context"

	"github.com/docvoice/docvoice/internal/core/domain"
)

// SessionReader exposes the current session to components that only need
// to know who, if anyone, is logged in.
type SessionReader interface {
	Current() *domain.Session
}

// HistoryRefresher triggers a history reload for a user. The pipeline uses
// it fire-and-forget after a logged-in summarize.
type HistoryRefresher interface {
	Refresh(ctx context.Context, userID string) error
}
