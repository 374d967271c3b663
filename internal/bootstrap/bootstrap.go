package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docvoice/docvoice/internal/config"
	"github.com/docvoice/docvoice/internal/core/usecase"
	"github.com/docvoice/docvoice/internal/infrastructure/docintel"
	"github.com/docvoice/docvoice/internal/infrastructure/documents"
	"github.com/docvoice/docvoice/internal/infrastructure/resilience"
	sessionvault "github.com/docvoice/docvoice/internal/infrastructure/sessionvault/sqlite"
	"github.com/docvoice/docvoice/internal/infrastructure/speech/espeak"
	"github.com/docvoice/docvoice/internal/observability/metrics"
)

// App wires the client's collaborators together. The shell consumes the
// usecases; Close releases the durable storage.
type App struct {
	Config config.Config

	Service *docintel.Client
	Library *documents.Library
	Metrics *metrics.ClientMetrics

	Pipeline *usecase.Pipeline
	Sessions *usecase.SessionManager
	History  *usecase.HistoryStore
	Speech   *usecase.SpeechController

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	clientMetrics := metrics.NewClientMetrics("docvoice")

	executor := resilience.NewExecutor(resilience.Config{
		CallTimeout:    cfg.Service.Timeout(),
		RateLimitRPS:   cfg.Service.RateLimitRPS,
		RateLimitBurst: cfg.Service.RateLimitBurst,
		BreakerEnabled: cfg.Service.BreakerEnabled,
	})

	service := docintel.New(cfg.Service.BaseURL, executor)
	auth := docintel.NewAuth(service)
	historySvc := docintel.NewHistory(service)

	vault, err := sessionvault.Open(cfg.Paths.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("open session vault: %w", err)
	}

	library, err := documents.New(cfg.Paths.Documents)
	if err != nil {
		_ = vault.Close()
		return nil, fmt.Errorf("init documents library: %w", err)
	}

	engine := espeak.New(cfg.Speech.Binary, cfg.Speech.Rate, cfg.Speech.Pitch)

	history := usecase.NewHistoryStore(historySvc, clientMetrics)
	sessions := usecase.NewSessionManager(auth, vault, history)
	pipeline := usecase.NewPipeline(service, sessions, history, clientMetrics, cfg.Paths.DefaultLang)
	speech := usecase.NewSpeechController(engine, clientMetrics)

	slog.InfoContext(ctx, "app_wired",
		"service_url", cfg.Service.BaseURL,
		"documents_dir", library.Dir(),
		"default_lang", pipeline.Language())

	return &App{
		Config:   cfg,
		Service:  service,
		Library:  library,
		Metrics:  clientMetrics,
		Pipeline: pipeline,
		Sessions: sessions,
		History:  history,
		Speech:   speech,
		closeFn: func() {
			_ = vault.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
