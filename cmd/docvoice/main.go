package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/docvoice/docvoice/internal/bootstrap"
	"github.com/docvoice/docvoice/internal/config"
	"github.com/docvoice/docvoice/internal/observability/logging"
	"github.com/docvoice/docvoice/internal/tui"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("DOCVOICE_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// The TUI owns stdout, so structured logs go to a file.
	logFile, err := logging.OpenLogFile(cfg.Logging.File)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	slog.SetDefault(logging.NewJSONLogger(logFile, "docvoice", cfg.Logging.Level))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if cfg.Metrics.Port != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", app.Metrics.Handler())
			if err := http.ListenAndServe(":"+cfg.Metrics.Port, mux); err != nil {
				slog.Warn("metrics_listener_failed", "port", cfg.Metrics.Port, "error", err)
			}
		}()
	}

	files, err := app.Library.Watch(ctx)
	if err != nil {
		slog.Warn("documents_watch_failed", "dir", app.Library.Dir(), "error", err)
	}

	model := tui.New(tui.Deps{
		Pipeline:  app.Pipeline,
		Sessions:  app.Sessions,
		History:   app.History,
		Speech:    app.Speech,
		Greeter:   app.Service,
		Documents: app.Library,
		Files:     files,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("shell error: %v", err)
	}
}
