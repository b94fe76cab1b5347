package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"map-ai-relay/internal/config"
	"map-ai-relay/internal/domain/ports/adapter"
	"map-ai-relay/internal/domain/ports/repository"
	"map-ai-relay/internal/extract"
	aiAdapters "map-ai-relay/internal/infra/adapters/ai"
	pg "map-ai-relay/internal/infra/db/postgres"
	"map-ai-relay/internal/infra/logging"
	"map-ai-relay/internal/infra/memstore"
	"map-ai-relay/internal/infra/metrics"
	red "map-ai-relay/internal/infra/redis"
	"map-ai-relay/internal/infra/web"
	"map-ai-relay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop-friendly)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Redis (optional) ----
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
	}

	// ---- Session store ----
	var sessions repository.SessionRepository
	switch cfg.Store.Backend {
	case "redis":
		sessions = red.NewSessionRepo(redisClient, cfg.Redis.TTL)
		logger.Info().Msg("session store: redis")
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		sessions = pg.NewSessionRepo(pool)
		logger.Info().Msg("session store: postgres")
	default:
		sessions = memstore.NewSessionRepo()
		logger.Info().Msg("session store: memory")
	}

	// ---- Text generator ----
	var gen adapter.TextGenerator
	switch cfg.AI.Provider {
	case "gemini":
		gen, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("generator: gemini")
	case "noop":
		gen = aiAdapters.NewNoopAdapter()
		logger.Warn().Msg("generator: noop (dev only)")
	default:
		gen, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.OpenAIURL)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Str("base", cfg.AI.OpenAIURL).Msg("generator: openai-compatible")
	}
	gen = aiAdapters.NewMeteredGenerator(gen, 16)

	// ---- Use cases ----
	extractor := extract.NewBraceExtractor()
	placeUC := usecase.NewPlaceUseCase(gen, extractor, logger)
	polygonUC := usecase.NewPolygonUseCase(gen, extractor, logger)

	chatOpts := usecase.ChatOptions{
		Strict:     cfg.Relay.StrictConfirm,
		MaxTokens:  cfg.AI.MaxTokens,
		RateLimit:  cfg.Rate.Limit,
		RateWindow: cfg.Rate.Window,
	}
	if redisClient != nil && cfg.Rate.Limit > 0 {
		chatOpts.RateLimiter = red.NewRateLimiter(redisClient)
	}
	chatUC := usecase.NewChatUseCase(sessions, gen, extractor, chatOpts, logger)

	// ---- HTTP ----
	tokens := web.NewTokenManager(cfg.Session.CookieSecret, cfg.Session.CookieName, cfg.Session.SecureCookie, cfg.Session.TTL)
	srv := web.NewServer(placeUC, polygonUC, chatUC, tokens, logger)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(cfg.Server.Timeout),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("relay listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
