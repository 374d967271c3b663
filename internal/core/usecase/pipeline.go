package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/core/ports"
	"github.com/docvoice/docvoice/internal/observability/metrics"
)

const serviceName = "docvoice"

// Pipeline runs the four document-intelligence actions as mutually
// exclusive operations. One shared busy flag guards all triggers: a
// second invocation while one is in flight is rejected, never queued.
type Pipeline struct {
	svc      ports.DocumentIntelligence
	sessions ports.SessionReader
	history  ports.HistoryRefresher
	metrics  *metrics.ClientMetrics

	busy atomic.Bool

	mu          sync.RWMutex
	summary     *domain.Summary
	translation *domain.Translation
	answer      *domain.Answer
	lang        string
}

func NewPipeline(
	svc ports.DocumentIntelligence,
	sessions ports.SessionReader,
	history ports.HistoryRefresher,
	m *metrics.ClientMetrics,
	defaultLang string,
) *Pipeline {
	if !domain.IsSupportedLanguage(defaultLang) {
		defaultLang = "en"
	}
	return &Pipeline{
		svc:      svc,
		sessions: sessions,
		history:  history,
		metrics:  m,
		lang:     defaultLang,
	}
}

func (p *Pipeline) acquire() error {
	if !p.busy.CompareAndSwap(false, true) {
		if p.metrics != nil {
			p.metrics.RecordBusyRejection()
		}
		return domain.ErrBusy
	}
	return nil
}

func (p *Pipeline) release() {
	p.busy.Store(false)
}

// Busy reports whether an operation is in flight. The shell disables all
// four trigger actions while true.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Summarize uploads the file, obtains extracted text, and posts it for
// summarization. The two stages are atomic from the caller's view: a
// stage-two failure discards the extracted text and leaves no summary.
func (p *Pipeline) Summarize(ctx context.Context, filename string, file io.Reader) (domain.Summary, error) {
	if filename == "" || file == nil {
		return domain.Summary{}, domain.WrapError(domain.ErrInputMissing, "summarize",
			errors.New("no file selected"))
	}
	if err := p.acquire(); err != nil {
		return domain.Summary{}, err
	}
	defer p.release()

	start := time.Now()
	summary, err := p.summarize(ctx, filename, file)
	if p.metrics != nil {
		p.metrics.ObserveOperation(serviceName, "summarize", time.Since(start), err)
	}
	return summary, err
}

func (p *Pipeline) summarize(ctx context.Context, filename string, file io.Reader) (domain.Summary, error) {
	text, err := p.svc.Extract(ctx, filename, file)
	if err != nil {
		return domain.Summary{}, err
	}
	if strings.TrimSpace(text) == "" {
		return domain.Summary{}, domain.WrapError(domain.ErrValidation, "summarize",
			errors.New("document contains no extractable text"))
	}

	// The user id, captured once here, parameterizes stage two so the
	// service persists the result. A logout during the call does not
	// change this run's outcome.
	userID := ""
	if session := p.sessions.Current(); session != nil {
		userID = session.UserID
	}

	summaryText, err := p.svc.Summarize(ctx, text, userID)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		Text:      summaryText,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.summary = &summary
	p.translation = nil
	p.answer = nil
	p.mu.Unlock()

	if userID != "" {
		// Fire-and-forget: a refresh failure never fails the summarize.
		refreshCtx := context.WithoutCancel(ctx)
		go func() {
			if err := p.history.Refresh(refreshCtx, userID); err != nil {
				slog.Warn("post_summarize_history_refresh_failed", "user_id", userID, "error", err)
			}
		}()
	}

	return summary, nil
}

// Translate renders the current summary into the target language. The
// code must belong to the fixed supported set; anything else is rejected
// before the transport layer.
func (p *Pipeline) Translate(ctx context.Context, langCode string) (domain.Translation, error) {
	if !domain.IsSupportedLanguage(langCode) {
		return domain.Translation{}, domain.WrapError(domain.ErrUnsupportedLanguage, "translate",
			errors.New("unknown code "+langCode))
	}
	if err := p.acquire(); err != nil {
		return domain.Translation{}, err
	}
	defer p.release()

	p.mu.RLock()
	summary := p.summary
	p.mu.RUnlock()
	if summary == nil || strings.TrimSpace(summary.Text) == "" {
		return domain.Translation{}, domain.WrapError(domain.ErrInputMissing, "translate",
			errors.New("no summary to translate"))
	}

	start := time.Now()
	text, err := p.svc.Translate(ctx, summary.Text, langCode)
	if p.metrics != nil {
		p.metrics.ObserveOperation(serviceName, "translate", time.Since(start), err)
	}
	if err != nil {
		// Previous translation stays untouched.
		return domain.Translation{}, err
	}

	translation := domain.Translation{Text: text, LangCode: langCode}
	p.mu.Lock()
	p.translation = &translation
	p.mu.Unlock()
	return translation, nil
}

// Ask answers a free-form question with the current summary as context.
// An empty context is permitted; the service decides relevance.
func (p *Pipeline) Ask(ctx context.Context, question string) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, domain.WrapError(domain.ErrInputMissing, "ask",
			errors.New("empty question"))
	}
	if err := p.acquire(); err != nil {
		return domain.Answer{}, err
	}
	defer p.release()

	p.mu.RLock()
	contextText := ""
	if p.summary != nil {
		contextText = p.summary.Text
	}
	p.mu.RUnlock()

	start := time.Now()
	text, err := p.svc.Ask(ctx, question, contextText)
	if p.metrics != nil {
		p.metrics.ObserveOperation(serviceName, "ask", time.Since(start), err)
	}
	if err != nil {
		return domain.Answer{}, err
	}

	answer := domain.Answer{Text: text, Question: question}
	p.mu.Lock()
	p.answer = &answer
	p.mu.Unlock()
	return answer, nil
}

// LoadHistoryEntry promotes a past summary to be the current one. Pure
// local transition, no network call; the derived translation and answer
// become stale and are cleared here.
func (p *Pipeline) LoadHistoryEntry(entry domain.HistoryEntry) domain.Summary {
	summary := domain.Summary{
		Text:      entry.Summary,
		CreatedAt: entry.CreatedAt,
	}
	p.mu.Lock()
	p.summary = &summary
	p.translation = nil
	p.answer = nil
	p.mu.Unlock()
	return summary
}

// SetLanguage changes the shared language selection consumed by translate
// and the secondary speech channel. It never touches an existing
// translation.
func (p *Pipeline) SetLanguage(code string) error {
	if !domain.IsSupportedLanguage(code) {
		return domain.WrapError(domain.ErrUnsupportedLanguage, "set language",
			errors.New("unknown code "+code))
	}
	p.mu.Lock()
	p.lang = code
	p.mu.Unlock()
	return nil
}

func (p *Pipeline) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

func (p *Pipeline) Summary() (domain.Summary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.summary == nil {
		return domain.Summary{}, false
	}
	return *p.summary, true
}

func (p *Pipeline) Translation() (domain.Translation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.translation == nil {
		return domain.Translation{}, false
	}
	return *p.translation, true
}

func (p *Pipeline) Answer() (domain.Answer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.answer == nil {
		return domain.Answer{}, false
	}
	return *p.answer, true
}
