package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/httpapi"
	"ai-trip-planner/internal/logger"
	"ai-trip-planner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		bootLog := logger.New(os.Stderr, "info", "console")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// 2. Initialize Services
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	// 3. Initialize Telegram Bot
	extra := map[string]http.Handler{}
	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg, application.BotServices(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		extra["/webhook"] = http.HandlerFunc(bot.HandleWebhook)
	} else {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewServer(application.APIServices(), log).Routes(extra),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if bot != nil {
		bot.Wait()
	}

	log.Info().Msg("server exiting")
}
