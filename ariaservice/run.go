// Package ariaservice is the composition root: it wires configuration,
// stores, the LLM client and the specialist modules into the HTTP
// server and runs it until shutdown.
package ariaservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/agent"
	"github.com/aria-labs/aria-server/internal/api"
	"github.com/aria-labs/aria-server/internal/config"
	"github.com/aria-labs/aria-server/internal/developer"
	"github.com/aria-labs/aria-server/internal/factory"
	"github.com/aria-labs/aria-server/internal/knowledge"
	"github.com/aria-labs/aria-server/internal/llm"
	"github.com/aria-labs/aria-server/internal/logger"
	"github.com/aria-labs/aria-server/internal/memory"
	"github.com/aria-labs/aria-server/internal/research"
	"github.com/aria-labs/aria-server/internal/trading"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

// Run starts the assistant HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("aria-server")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("ollama_url", cfg.OllamaURL).
		Msg("ARIA server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute, // generation calls are slow
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildHandler constructs every component explicitly and returns the
// assembled HTTP handler plus a cleanup for owned resources.
func buildHandler(ctx context.Context, cfg *config.Config, log zerolog.Logger) (http.Handler, func(), error) {
	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Feedback store unavailable")
		return nil, nil, err
	}
	cleanup := func() { _ = st.Close() }

	gen := llm.New(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaCodeModel,
		time.Duration(cfg.OllamaTimeoutSeconds)*time.Second)

	// Degraded LLM is not fatal: history, retrieval and feedback still work.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := gen.HealthPing(pingCtx); err != nil {
		log.Warn().Err(err).Str("ollama_url", cfg.OllamaURL).Msg("Ollama unreachable at startup, continuing degraded")
	} else {
		log.Info().Str("model", cfg.OllamaModel).Msg("Ollama reachable")
	}
	cancel()

	sessions := memory.NewStore(cfg.MaxHistory, log)
	knowledgeStore := knowledge.NewStore()

	web := research.NewDuckDuckGoClient("", 15*time.Second)
	engine := research.NewEngine(knowledgeStore, gen, web,
		cfg.ChunkSize, cfg.ChunkOverlap, cfg.SearchTopK, log)

	market := trading.NewYahooClient("", 15*time.Second)
	analyst := trading.NewAnalyst(market, gen, log)

	dev := developer.New(gen)

	core := agent.New(sessions, gen, dev, analyst, engine, cfg.MaxContextTokens, log)

	handlers := api.Handlers{
		Chat:     api.NewChatHandler(core, sessions),
		Research: api.NewResearchHandler(engine, cfg.WebSearchMaxResults),
		Trading:  api.NewTradingHandler(analyst, market),
		Feedback: api.NewFeedbackHandler(st, log),
		Health:   api.NewHealthHandler(core, st, Version),
	}

	origins := strings.Split(cfg.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return api.NewRouter(handlers, origins), cleanup, nil
}
