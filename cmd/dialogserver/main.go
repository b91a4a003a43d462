// Command dialogserver serves dialogue extraction jobs over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dialogue-ocr/internal/api"
	"dialogue-ocr/internal/config"
	"dialogue-ocr/internal/job"
	"dialogue-ocr/internal/logger"
	"dialogue-ocr/internal/pipeline"
	"dialogue-ocr/internal/version"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting dialogserver",
		zap.String("version", version.Version),
		zap.String("addr", cfg.Addr),
		zap.String("crop_dir", cfg.CropDir),
		zap.Int("workers", cfg.Workers))

	fatalOnErr(os.MkdirAll(cfg.CropDir, 0o755), "create crop dir")

	runner := job.PipelineRunner(
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(log))
	jobs := job.NewManager(job.Options{
		CropRoot:     cfg.CropDir,
		TTL:          cfg.JobTTL,
		ProgressRate: cfg.ProgressRate,
	}, runner, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(api.NewHandlers(jobs, cfg.Lang, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := jobs.Shutdown(shutdownCtx); err != nil {
		log.Warn("jobs did not stop in time", zap.Error(err))
	}
	log.Info("dialogserver stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
