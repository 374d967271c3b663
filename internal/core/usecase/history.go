package usecase

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/core/ports"
	"github.com/docvoice/docvoice/internal/observability/metrics"
)

// HistoryStore is the read-only cache of a user's past summaries. A
// failed refresh keeps the previous cache; nothing retries automatically.
type HistoryStore struct {
	svc     ports.HistoryService
	metrics *metrics.ClientMetrics
	group   singleflight.Group

	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

func NewHistoryStore(svc ports.HistoryService, m *metrics.ClientMetrics) *HistoryStore {
	return &HistoryStore{
		svc:     svc,
		metrics: m,
	}
}

// Refresh replaces the cache with the server's list for the user.
// Concurrent triggers for the same user share one in-flight call.
func (s *HistoryStore) Refresh(ctx context.Context, userID string) error {
	_, err, _ := s.group.Do(userID, func() (any, error) {
		entries, err := s.svc.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.entries = entries
		s.mu.Unlock()
		return nil, nil
	})

	if s.metrics != nil {
		s.metrics.RecordHistoryRefresh(serviceName, err)
	}
	if err != nil {
		slog.Warn("history_refresh_failed", "user_id", userID, "error", err)
	}
	return err
}

// Entries returns the cached list in server order.
func (s *HistoryStore) Entries() []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *HistoryStore) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}
