package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docvoice/docvoice/internal/core/domain"
)

type intelFake struct {
	extractFn   func(ctx context.Context, filename string, body io.Reader) (string, error)
	summarizeFn func(ctx context.Context, text, userID string) (string, error)
	translateFn func(ctx context.Context, text, langCode string) (string, error)
	askFn       func(ctx context.Context, question, contextText string) (string, error)
	calls       atomic.Int32
}

func (f *intelFake) Extract(ctx context.Context, filename string, body io.Reader) (string, error) {
	f.calls.Add(1)
	if f.extractFn == nil {
		return "", errors.New("unexpected extract call")
	}
	return f.extractFn(ctx, filename, body)
}

func (f *intelFake) Summarize(ctx context.Context, text, userID string) (string, error) {
	f.calls.Add(1)
	if f.summarizeFn == nil {
		return "", errors.New("unexpected summarize call")
	}
	return f.summarizeFn(ctx, text, userID)
}

func (f *intelFake) Translate(ctx context.Context, text, langCode string) (string, error) {
	f.calls.Add(1)
	if f.translateFn == nil {
		return "", errors.New("unexpected translate call")
	}
	return f.translateFn(ctx, text, langCode)
}

func (f *intelFake) Ask(ctx context.Context, question, contextText string) (string, error) {
	f.calls.Add(1)
	if f.askFn == nil {
		return "", errors.New("unexpected ask call")
	}
	return f.askFn(ctx, question, contextText)
}

type sessionsFake struct {
	session *domain.Session
}

func (f *sessionsFake) Current() *domain.Session {
	return f.session
}

type refresherFake struct {
	calls chan string
	err   error
}

func (f *refresherFake) Refresh(_ context.Context, userID string) error {
	if f.calls != nil {
		f.calls <- userID
	}
	return f.err
}

func newTestPipeline(svc *intelFake, sessions *sessionsFake, history *refresherFake) *Pipeline {
	if sessions == nil {
		sessions = &sessionsFake{}
	}
	if history == nil {
		history = &refresherFake{}
	}
	return NewPipeline(svc, sessions, history, nil, "fr")
}

func TestSummarizeTwoStages(t *testing.T) {
	svc := &intelFake{
		extractFn: func(_ context.Context, filename string, body io.Reader) (string, error) {
			if filename != "report.pdf" {
				t.Errorf("filename = %q, want report.pdf", filename)
			}
			raw, _ := io.ReadAll(body)
			if string(raw) != "%PDF-raw" {
				t.Errorf("body = %q", raw)
			}
			return "extracted text", nil
		},
		summarizeFn: func(_ context.Context, text, userID string) (string, error) {
			if text != "extracted text" {
				t.Errorf("summarize received %q", text)
			}
			if userID != "u1" {
				t.Errorf("userID = %q, want u1", userID)
			}
			return "a short summary", nil
		},
	}
	history := &refresherFake{calls: make(chan string, 1)}
	p := newTestPipeline(svc, &sessionsFake{session: &domain.Session{UserID: "u1"}}, history)

	summary, err := p.Summarize(context.Background(), "report.pdf", strings.NewReader("%PDF-raw"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Text != "a short summary" {
		t.Errorf("summary text = %q", summary.Text)
	}
	if got, ok := p.Summary(); !ok || got.Text != summary.Text {
		t.Errorf("Summary() = %+v, %v", got, ok)
	}

	select {
	case userID := <-history.calls:
		if userID != "u1" {
			t.Errorf("history refreshed for %q, want u1", userID)
		}
	case <-time.After(time.Second):
		t.Fatal("history refresh never triggered")
	}
}

func TestSummarizeStageTwoFailureLeavesNoSummary(t *testing.T) {
	svc := &intelFake{
		extractFn: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			return "extracted text", nil
		},
		summarizeFn: func(_ context.Context, _, _ string) (string, error) {
			return "", domain.WrapError(domain.ErrTransport, "summarize", errors.New("bad gateway"))
		},
	}
	p := newTestPipeline(svc, nil, nil)

	_, err := p.Summarize(context.Background(), "report.pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("err = %v, want transport kind", err)
	}
	if _, ok := p.Summary(); ok {
		t.Error("failed summarize left a summary behind")
	}
}

func TestSummarizeEmptyExtractionRejected(t *testing.T) {
	svc := &intelFake{
		extractFn: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			return "   \n", nil
		},
	}
	p := newTestPipeline(svc, nil, nil)

	_, err := p.Summarize(context.Background(), "blank.pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation kind", err)
	}
}

func TestSummarizeWithoutFile(t *testing.T) {
	p := newTestPipeline(&intelFake{}, nil, nil)

	_, err := p.Summarize(context.Background(), "", nil)
	if !domain.IsKind(err, domain.ErrInputMissing) {
		t.Fatalf("err = %v, want input-missing kind", err)
	}
	if p.Busy() {
		t.Error("rejected trigger left the busy flag set")
	}
}

func TestBusyRejectsSecondTrigger(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	svc := &intelFake{
		extractFn: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			close(entered)
			<-release
			return "extracted text", nil
		},
		summarizeFn: func(_ context.Context, _, _ string) (string, error) {
			return "summary", nil
		},
	}
	p := newTestPipeline(svc, nil, nil)

	result := make(chan error, 1)
	go func() {
		_, err := p.Summarize(context.Background(), "report.pdf", strings.NewReader("x"))
		result <- err
	}()
	<-entered

	if _, err := p.Translate(context.Background(), "fr"); !domain.IsKind(err, domain.ErrBusy) {
		t.Errorf("Translate during summarize: %v, want busy kind", err)
	}
	if _, err := p.Ask(context.Background(), "what"); !domain.IsKind(err, domain.ErrBusy) {
		t.Errorf("Ask during summarize: %v, want busy kind", err)
	}

	close(release)
	if err := <-result; err != nil {
		t.Fatalf("in-flight summarize failed after rejections: %v", err)
	}
	if p.Busy() {
		t.Error("busy flag still set after completion")
	}
}

func TestTranslateUnsupportedLanguageNeverReachesService(t *testing.T) {
	svc := &intelFake{}
	p := newTestPipeline(svc, nil, nil)

	_, err := p.Translate(context.Background(), "xx")
	if !domain.IsKind(err, domain.ErrUnsupportedLanguage) {
		t.Fatalf("err = %v, want unsupported-language kind", err)
	}
	if n := svc.calls.Load(); n != 0 {
		t.Errorf("service called %d times for an unsupported code", n)
	}
}

func TestTranslateWithoutSummary(t *testing.T) {
	p := newTestPipeline(&intelFake{}, nil, nil)

	_, err := p.Translate(context.Background(), "fr")
	if !domain.IsKind(err, domain.ErrInputMissing) {
		t.Fatalf("err = %v, want input-missing kind", err)
	}
}

func TestTranslateFailurePreservesPrevious(t *testing.T) {
	fail := false
	svc := &intelFake{
		translateFn: func(_ context.Context, _, langCode string) (string, error) {
			if fail {
				return "", domain.WrapError(domain.ErrTransport, "translate", errors.New("down"))
			}
			return "bonjour", nil
		},
	}
	p := newTestPipeline(svc, nil, nil)
	p.LoadHistoryEntry(domain.HistoryEntry{Summary: "hello"})

	if _, err := p.Translate(context.Background(), "fr"); err != nil {
		t.Fatalf("first translate: %v", err)
	}

	fail = true
	if _, err := p.Translate(context.Background(), "de"); err == nil {
		t.Fatal("expected second translate to fail")
	}
	got, ok := p.Translation()
	if !ok || got.Text != "bonjour" || got.LangCode != "fr" {
		t.Errorf("Translation() = %+v, %v; want the earlier French result", got, ok)
	}
}

func TestAskUsesSummaryAsContext(t *testing.T) {
	svc := &intelFake{
		askFn: func(_ context.Context, question, contextText string) (string, error) {
			if contextText != "hello" {
				t.Errorf("context = %q, want the current summary", contextText)
			}
			return "an answer", nil
		},
	}
	p := newTestPipeline(svc, nil, nil)
	p.LoadHistoryEntry(domain.HistoryEntry{Summary: "hello"})

	answer, err := p.Ask(context.Background(), "what is this")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Question != "what is this" {
		t.Errorf("answer kept question %q", answer.Question)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	p := newTestPipeline(&intelFake{}, nil, nil)

	_, err := p.Ask(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInputMissing) {
		t.Fatalf("err = %v, want input-missing kind", err)
	}
}

func TestLoadHistoryEntryClearsDerivedState(t *testing.T) {
	svc := &intelFake{
		translateFn: func(_ context.Context, _, _ string) (string, error) {
			return "bonjour", nil
		},
		askFn: func(_ context.Context, _, _ string) (string, error) {
			return "answer", nil
		},
	}
	p := newTestPipeline(svc, nil, nil)
	p.LoadHistoryEntry(domain.HistoryEntry{Summary: "first"})
	if _, err := p.Translate(context.Background(), "fr"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Ask(context.Background(), "q"); err != nil {
		t.Fatal(err)
	}
	before := svc.calls.Load()

	summary := p.LoadHistoryEntry(domain.HistoryEntry{Summary: "second"})
	if summary.Text != "second" {
		t.Errorf("loaded summary = %q", summary.Text)
	}
	if _, ok := p.Translation(); ok {
		t.Error("stale translation survived a history load")
	}
	if _, ok := p.Answer(); ok {
		t.Error("stale answer survived a history load")
	}
	if svc.calls.Load() != before {
		t.Error("history load made a network call")
	}
}

func TestSetLanguage(t *testing.T) {
	p := newTestPipeline(&intelFake{}, nil, nil)

	if err := p.SetLanguage("de"); err != nil {
		t.Fatalf("SetLanguage(de): %v", err)
	}
	if p.Language() != "de" {
		t.Errorf("Language() = %q", p.Language())
	}
	if err := p.SetLanguage("xx"); !domain.IsKind(err, domain.ErrUnsupportedLanguage) {
		t.Errorf("SetLanguage(xx) = %v, want unsupported-language kind", err)
	}
	if p.Language() != "de" {
		t.Errorf("rejected code changed the selection to %q", p.Language())
	}
}
