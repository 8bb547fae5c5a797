package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"surveysphere/internal/config"
	"surveysphere/internal/logging"
	"surveysphere/internal/scheduler"
	"surveysphere/internal/server"
	"surveysphere/internal/service"
	"surveysphere/internal/storage"
	"surveysphere/internal/storage/providers"
	httptransport "surveysphere/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()
	slog.SetDefault(logging.New(cfg.Env, cfg.Log))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.InitDB(cfg.DatabaseUrl)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	allProviders := providers.New(db)
	mailer, closeMailer := newMailer(cfg.SMTP)
	defer closeMailer()

	scheduler.NewSurveyScheduler(
		allProviders.ScheduleProvider,
		allProviders.SurveyProvider,
		mailer,
		cfg.Scheduler.Interval,
	).Start(ctx)

	router := httptransport.Router(allProviders, cfg, mailer)

	addr := ":" + cfg.Server.Port
	if err := server.Start(ctx, addr, cfg.Server.AllowedOrigins, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	slog.Info("server stopped")
}

func newMailer(cfg config.SMTPConfig) (service.Mailer, func()) {
	if cfg.Host == "" {
		slog.Info("smtp host not configured, survey invitations are logged only")
		return scheduler.NewLogMailer(slog.Default()), func() {}
	}
	mailer, err := scheduler.NewSMTPMailer(cfg)
	if err != nil {
		log.Fatalf("failed to set up smtp mailer: %v", err)
	}
	return mailer, mailer.Close
}
