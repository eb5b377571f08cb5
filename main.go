package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game-forge/config"
	"game-forge/handlers"
	"game-forge/logging"
	"game-forge/providers"
	"game-forge/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	configFile string
	host       string
	port       int
	gamesDir   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &serveFlags{}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game generation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}
	serveCmd.Flags().StringVar(&flags.configFile, "config", "", "config file (YAML, JSON or .env)")
	serveCmd.Flags().StringVar(&flags.host, "host", "", "listen host (overrides HOST)")
	serveCmd.Flags().IntVar(&flags.port, "port", 0, "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&flags.gamesDir, "games-dir", "", "directory games are stored in (overrides GAMES_DIR)")

	root := &cobra.Command{
		Use:   "game-forge",
		Short: "game-forge turns game ideas into playable PhaserJS pages",
		Long: `game-forge refines a game idea with Gemini, has Claude write a
self-contained PhaserJS HTML game from the concept, and stores every
generated game on disk so it can be listed, updated and played.

Run without a subcommand to start the API server.`,
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.Flags().AddFlagSet(serveCmd.Flags())
	root.AddCommand(serveCmd)
	return root
}

func runServe(flags *serveFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}
	if flags.host != "" {
		cfg.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Port = flags.port
	}
	if flags.gamesDir != "" {
		cfg.GamesDir = flags.gamesDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store := storage.NewStore(cfg.GamesDir)
	if err := store.EnsureStorageDirs(); err != nil {
		logger.Error("failed to create storage directories", zap.Error(err))
		return err
	}
	logger.Info("storage directories ensured", zap.String("games_dir", store.Root()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enhancer, err := providers.NewGeminiClient(ctx, providers.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.ProviderTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create Gemini client", zap.Error(err))
		return err
	}
	coder := providers.NewAnthropicClient(providers.AnthropicConfig{
		APIKey:  cfg.ClaudeAPIKey,
		BaseURL: cfg.ClaudeBaseURL,
		Model:   cfg.ClaudeModel,
		Timeout: cfg.ProviderTimeout,
	}, logger)

	h := handlers.New(handlers.Deps{
		Store:    store,
		Enhancer: enhancer,
		Coder:    coder,
		Logger:   logger,
		Limits: handlers.Limits{
			GenerateMaxTokens: cfg.GenerateMaxTokens,
			UpdateMaxTokens:   cfg.UpdateMaxTokens,
			Temperature:       cfg.Temperature,
		},
	})
	app := handlers.NewApp(h, handlers.AppConfig{CORSOrigins: cfg.CORSOrigins})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr()))
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
