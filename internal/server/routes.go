package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/foyerhq/foyer/internal/agent"
	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/executor"
	"github.com/foyerhq/foyer/internal/handler"
	"github.com/foyerhq/foyer/internal/jobs"
	"github.com/foyerhq/foyer/internal/middleware"
	"github.com/foyerhq/foyer/internal/resolver"
	"github.com/foyerhq/foyer/internal/security"
	"github.com/foyerhq/foyer/internal/session"
	"github.com/foyerhq/foyer/internal/store"
	"github.com/foyerhq/foyer/internal/tools"
)

// setupRoutes wires storage, the tool pipeline and the agent, and returns the
// router plus the store so it can be closed on shutdown.
func (s *Server) setupRoutes() (http.Handler, store.Store, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Storage ────────────────────────────────────────────────────────────────
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st = pg
		log.Info().Msg("using postgres store")
	} else {
		st = store.NewMemoryStore()
		log.Warn().Msg("DATABASE_URL not set - using in-memory store, data is not persisted")
	}

	// ─── Security ───────────────────────────────────────────────────────────────
	piiDetector := security.NewPIIDetector(cfg.PIIKeywords)
	promptVal := security.NewPromptValidator()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Tool pipeline ──────────────────────────────────────────────────────────
	registry := tools.NewRegistry()
	registry.RegisterAll(tools.ContactTools(st))
	registry.RegisterAll(tools.PropertyTools(st))
	registry.RegisterAll(tools.DealTools(st))
	registry.RegisterAll(tools.CalendarTools(st))
	registry.RegisterAll(tools.InboxTools(st))

	jobManager := jobs.NewManager()
	exec := executor.NewService(
		registry,
		resolver.New(st),
		tools.NewIdempotencyGuard(cfg.IdempotencyTTL),
		approval.NewGate(cfg.ApprovalTTL),
		jobManager,
		auditLogger,
	)

	// Job settlements are logged centrally; per-user delivery (websocket,
	// push) would subscribe the same way.
	events, _ := jobManager.Subscribe()
	go func() {
		for evt := range events {
			log.Info().
				Str("event", string(evt.Type)).
				Str("job_id", evt.Job.ID).
				Str("tool", evt.Job.ToolName).
				Msg("job settled")
		}
	}()

	// ─── AI Agent ───────────────────────────────────────────────────────────────
	var model agent.Model
	if cfg.AnthropicAPIKey != "" {
		model = agent.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL, cfg.AgentMaxIter)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - chat endpoint disabled")
	}

	sessions := session.NewManager()

	var orch *agent.Orchestrator
	if model != nil {
		orch = agent.NewOrchestrator(model, exec, registry, sessions, piiDetector, promptVal, auditLogger)
	}

	log.Info().
		Int("tools", len(registry.All())).
		Bool("chat_enabled", orch != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("pii_detection", cfg.EnablePIIDetection).
		Msg("service configuration")
	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Handlers ───────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(st)
	actionsH := handler.NewActionsHandler(exec, sessions)
	jobsH := handler.NewJobsHandler(jobManager)

	var chatH *handler.ChatHandler
	if orch != nil {
		chatH = handler.NewChatHandler(orch, time.Duration(cfg.AgentTimeout)*time.Second)
	}

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			if chatH != nil {
				r.Post("/chat", chatH.Chat)
			}

			r.Post("/actions/{action_id}/approve", actionsH.Approve)
			r.Post("/actions/{action_id}/dismiss", actionsH.Dismiss)

			r.Get("/jobs", jobsH.List)
			r.Get("/jobs/{job_id}", jobsH.Get)
		})
	})

	return r, st, nil
}
