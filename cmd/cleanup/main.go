// Command cleanup deletes expired auth tokens and sessions. Run it periodically (e.g. from cron).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/app/di"
	"blog_backend/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	logCfg, err := logging.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load log config")
	}
	logging.Setup(logCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err = run(ctx)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("cleanup failed")
		os.Exit(1)
	}
}

// run は接続を開き、期限切れのトークンとセッションを削除して、接続を閉じてから戻ります。
func run(ctx context.Context) error {
	cfg, err := di.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	infra, err := di.NewInfra(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect infrastructure: %w", err)
	}
	defer infra.Close()

	// メール・ストレージは不要
	accounts, err := di.NewAccounts(infra, cfg, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to build accounts: %w", err)
	}

	tokens, sessions, err := accounts.Account.DeleteExpiredTokens(ctx)
	if err != nil {
		return err
	}
	log.Info().Int64("tokens", tokens).Int64("sessions", sessions).Msg("cleanup ok")
	return nil
}
