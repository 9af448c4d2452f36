package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smashpoint/league/internal/auth"
	"github.com/smashpoint/league/internal/guard"
	"github.com/smashpoint/league/internal/handler"
	adminhandler "github.com/smashpoint/league/internal/handler/admin"
	"github.com/smashpoint/league/internal/infra"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/provider"
	"github.com/smashpoint/league/internal/service"
)

// idempotencyTTL is how long a match submission key is remembered.
const idempotencyTTL = 24 * time.Hour

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Config   *infra.Config
	Gate     *ledger.Gate
	JWTMgr   *auth.JWTManager
	Logger   *slog.Logger
	Notifier provider.TACNotifier
	// Optional. Nil Events drops ledger events; nil Hub disables /api/ws.
	Events service.EventPublisher
	Hub    *infra.WSHub
	// Optional. Created from Config when nil; main passes its own so it can sweep it.
	TACLimiter *guard.RateLimiter
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	cfg := deps.Config
	logger := deps.Logger

	limiter := deps.TACLimiter
	if limiter == nil {
		limiter = guard.NewRateLimiter(cfg.TACRateLimit, cfg.TACRateWindow)
	}

	// Services
	leagueSvc := service.NewLeagueService(
		deps.Gate,
		league.NewValidator(cfg.DefaultSeason),
		deps.Events,
		guard.NewIdempotencyGuard(idempotencyTTL),
		logger,
	)
	onboardingSvc := service.NewOnboardingService(service.OnboardingConfig{
		Gate:       deps.Gate,
		Notifier:   deps.Notifier,
		JWT:        deps.JWTMgr,
		Limiter:    limiter,
		Lockout:    guard.NewLockout(guard.MaxAttempts, guard.LockoutWindow),
		Events:     deps.Events,
		ExposeCode: cfg.ExposeTACCode,
		Logger:     logger,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(onboardingSvc)
	playerHandler := handler.NewPlayerHandler(leagueSvc)
	matchHandler := handler.NewMatchHandler(leagueSvc)
	contentHandler := handler.NewContentHandler(leagueSvc)
	profileHandler := handler.NewProfileHandler(leagueSvc)

	// Admin handlers
	dashboardAdmin := adminhandler.NewDashboardHandler(leagueSvc, deps.Gate)
	playerAdmin := adminhandler.NewPlayerAdminHandler(leagueSvc)
	matchAdmin := adminhandler.NewMatchAdminHandler(leagueSvc)
	contentAdmin := adminhandler.NewContentAdminHandler(leagueSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	r.Route("/api", func(r chi.Router) {
		// Health (no auth)
		r.Get("/health", handler.HealthHandler(deps.Gate, cfg.DefaultSeason))

		// Onboarding (no auth)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-tac", authHandler.RequestTAC)
			r.Post("/verify-tac", authHandler.VerifyTAC)
			r.Post("/login-by-phone", authHandler.LoginByPhone)
		})

		// Public ledger
		r.Get("/players", playerHandler.List)
		r.Get("/players/by-phone", playerHandler.ByPhone)
		r.Get("/players/{playerID}", playerHandler.Get)

		r.Get("/matches", matchHandler.List)
		r.Post("/matches", matchHandler.Create)
		r.Get("/standings", matchHandler.Standings)
		r.Get("/tournament", matchHandler.Bracket)

		r.Get("/news", contentHandler.News)
		r.Get("/community", contentHandler.Community)
		r.Post("/community", contentHandler.CreatePost)

		r.Get("/profile", profileHandler.Get)

		if deps.Hub != nil {
			wsHandler := handler.NewWSHandler(deps.Hub, cfg.CORSAllowedOrigins, logger)
			r.Get("/ws", wsHandler.Serve)
		}

		// Player session or admin token
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticatePlayerOrAdmin(deps.JWTMgr, cfg.AdminToken))
			r.Put("/profile/{playerID}", profileHandler.Update)
		})

		// Admin token routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdminToken(cfg.AdminToken))

			r.Get("/dashboard", dashboardAdmin.Dashboard)
			r.Get("/integrity", dashboardAdmin.Integrity)

			r.Route("/players", func(r chi.Router) {
				r.Post("/", playerAdmin.Create)
				r.Put("/{playerID}", playerAdmin.Update)
				r.Delete("/{playerID}", playerAdmin.Delete)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Post("/", matchAdmin.Create)
				r.Put("/{matchID}", matchAdmin.Update)
				r.Delete("/{matchID}", matchAdmin.Delete)
			})

			r.Route("/tournament/matches", func(r chi.Router) {
				r.Post("/", matchAdmin.UpsertTournamentMatch)
				r.Delete("/{tournamentMatchID}", matchAdmin.DeleteTournamentMatch)
			})

			r.Post("/news", contentAdmin.CreateNews)
			r.Delete("/news/{newsID}", contentAdmin.DeleteNews)
			r.Delete("/community/{postID}", contentAdmin.DeletePost)
		})
	})

	return r
}
