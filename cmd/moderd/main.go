package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"moderd/internal/classifier"
	"moderd/internal/config"
	"moderd/internal/httpapi"
	"moderd/internal/hub"
)

const version = "1.0.0"

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		cfgPath        string
		addr           string
		hubURL         string
		hubToken       string
		toxicThreshold float64
		spamThreshold  float64
	)
	root := &cobra.Command{
		Use:           "moderd",
		Short:         "Content moderation classification daemon",
		Long:          "moderd classifies Spanish review text for toxicity and spam via hosted transformer models and returns moderation recommendations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env first so MODERD_* overlays see it (missing file is fine).
			_ = godotenv.Load()

			cfg := config.Default()
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			cfg = config.ApplyEnv(cfg)
			// Flags win over file and env when set explicitly.
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("hub-url") {
				cfg.HubBaseURL = hubURL
			}
			if cmd.Flags().Changed("hub-token") {
				cfg.HubToken = hubToken
			}
			if cmd.Flags().Changed("toxic-threshold") {
				cfg.ToxicThreshold = toxicThreshold
			}
			if cmd.Flags().Changed("spam-threshold") {
				cfg.SpamThreshold = spamThreshold
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return run(cfg)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "", "Path to config file (.yaml/.json/.toml)")
	root.Flags().StringVar(&addr, "addr", ":8000", "HTTP listen address, e.g. :8000")
	root.Flags().StringVar(&hubURL, "hub-url", "", "Inference API base URL")
	root.Flags().StringVar(&hubToken, "hub-token", "", "Inference API token")
	root.Flags().Float64Var(&toxicThreshold, "toxic-threshold", 0.7, "Toxicity removal threshold (0..1)")
	root.Flags().Float64Var(&spamThreshold, "spam-threshold", 0.7, "Spam removal threshold (0..1)")
	return root
}

func run(cfg config.Config) error {
	logger := newLogger(cfg)

	client := hub.New(cfg.HubBaseURL, cfg.HubToken, cfg.RequestTimeout, cfg.ConnectTimeout,
		hub.WithMaxSequenceLen(cfg.MaxSequenceLen))
	svc := classifier.New(classifier.Config{
		ToxicityModel:  cfg.ToxicityModel,
		SpamModel:      cfg.SpamModel,
		ToxicThreshold: cfg.ToxicThreshold,
		SpamThreshold:  cfg.SpamThreshold,
		MaxBatchSize:   cfg.MaxBatchSize,
		MaxConcurrency: cfg.MaxConcurrency,
		MaxQueueDepth:  cfg.MaxQueueDepth,
		MaxQueueWait:   cfg.MaxQueueWait,
		CacheTTL:       cfg.CacheTTL,
		Backend:        cfg.HubBaseURL,
		Version:        version,
		Environment:    cfg.Environment,
	}, client, logger)

	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(int64(cfg.MaxBodyBytes))
	httpapi.SetMaxTextChars(cfg.MaxTextChars)
	httpapi.SetMaxBatchItems(cfg.MaxBatchSize)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins)

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	// Warm both detectors in the background; /readiness flips once the
	// backend has loaded them. Liveness stays green throughout.
	go func() {
		wctx, cancel := context.WithTimeout(baseCtx, cfg.WarmupTimeout)
		defer cancel()
		if err := svc.Warmup(wctx); err != nil {
			logger.Error().Err(err).Msg("model warmup failed; service stays not ready")
			return
		}
		logger.Info().Msg("all models ready")
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("backend", cfg.HubBaseURL).
			Str("toxicity_model", cfg.ToxicityModel).
			Str("spam_model", cfg.SpamModel).
			Msg("moderd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	var logger zerolog.Logger
	if cfg.Debug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().
		Timestamp().
		Str("service", "moderd").
		Str("env", cfg.Environment).
		Logger()
}
