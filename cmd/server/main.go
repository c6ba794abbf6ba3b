package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/app/di"
	"blog_backend/internal/platform/logging"
)

func main() {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	logCfg, err := logging.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load log config")
	}
	logging.Setup(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// run はシグナルを受けるかサーバーが異常終了するまで待ち、接続を閉じてから戻ります。
func run(ctx context.Context) error {
	cfg, err := di.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// db / Redis
	infra, err := di.NewInfra(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect infrastructure: %w", err)
	}
	defer infra.Close()

	// ルータ生成
	router, err := di.NewServer(ctx, infra, cfg)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
