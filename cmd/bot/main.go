// Package main contains the entrypoint for the relay bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/relaybot/internal/ai"
	"github.com/edgard/relaybot/internal/bot"
	"github.com/edgard/relaybot/internal/bot/handlers"
	"github.com/edgard/relaybot/internal/bot/tasks"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/logger"
	"github.com/edgard/relaybot/internal/metrics"
	"github.com/edgard/relaybot/internal/server"
	"github.com/edgard/relaybot/internal/telegram"
)

// Set by ldflags: -X main.version=1.2.3
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("Bot stopped due to error", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath, envFile string

	root := &cobra.Command{
		Use:           "relaybot",
		Short:         "Telegram bot that relays messages to free AI services",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, envFile)
		},
	}
	root.Flags().StringVar(&configPath, "config", "./config.yaml", "Path to configuration file")
	root.Flags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before configuration")

	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bot version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "relaybot %s\n", version)
		},
	}
}

// run initializes all application components (config, logger, db, AI service,
// Telegram client, scheduler, keep-alive server) and blocks until ctx is
// cancelled or a component fails.
func run(ctx context.Context, configPath, envFile string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	log, logCloser, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON, cfg.Logger.File)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON, "file", cfg.Logger.File)
	log.Info("Configuration loaded", "config", cfg.Summary())

	m := metrics.New()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	aiService, err := ai.NewServiceFromConfig(ctx, cfg.AI, m, log)
	if err != nil {
		return fmt.Errorf("failed to initialize AI service: %w", err)
	}

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		AI:      aiService,
		Metrics: m,
		Version: version,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), metrics.Middleware(m)),
		tgbot.WithDefaultHandler(handlers.Recover(hDeps)(handlers.NewMessageHandler(hDeps))),
		tgbot.WithHTTPClient(cfg.Telegram.PollTimeout, &http.Client{Timeout: 2 * cfg.Telegram.PollTimeout}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		return err
	}

	cfg.Telegram.BotInfo, err = telegram.FetchBotInfo(ctx, tg)
	if err != nil {
		return err
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		return fmt.Errorf("failed to register Telegram handlers: %w", err)
	}
	if err := telegram.SetCommands(ctx, tg, cmdHandlers); err != nil {
		log.Warn("Failed to publish bot commands", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), m)
	if err != nil {
		return err
	}

	var keepAlive bot.Runner
	if cfg.Server.Enabled {
		keepAlive = server.New(cfg.Server.Addr, server.Deps{
			Logger:    log,
			Metrics:   m,
			Database:  store,
			Providers: aiService,
		})
	}

	app := bot.NewBot(log, tg, sched, keepAlive)

	log.Info("Starting bot...", "version", version)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("Bot stopped gracefully.")
	return nil
}
