// =============================================================================
// FILE: internal/api/router.go
// =============================================================================
// HTTP router setup - defines all API routes and wires up handlers.
//
// Route Groups:
//   /health, /games, /leaderboard - public
//   /register, /login             - establish a session
//   /auth/*, /user/*, /profile    - require a session
//   /play/*                       - require a session, rate limited
//   /internal/*                   - operator routes (INTERNAL_API_KEY)
//
// Every route is an exact (method, path) pair. Anything else gets a JSON 404
// with no payload.
// =============================================================================

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/JoshBaneyCS/casino-wagers/internal/auth"
	"github.com/JoshBaneyCS/casino-wagers/internal/blackjack"
	"github.com/JoshBaneyCS/casino-wagers/internal/logging"
	"github.com/JoshBaneyCS/casino-wagers/internal/ratelimit"
	"github.com/JoshBaneyCS/casino-wagers/internal/session"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/wager"
	"github.com/JoshBaneyCS/casino-wagers/internal/web"
	"github.com/JoshBaneyCS/casino-wagers/internal/web/handlers"
)

// RequestTimeout bounds a single request.
const RequestTimeout = 60 * time.Second

// RouterConfig holds dependencies needed to set up routes
type RouterConfig struct {
	Sessions  *session.Store
	Users     users.Repository
	Auth      *auth.Service
	Engine    *wager.Engine
	Blackjack *blackjack.Game

	// Limiter throttles /play/*. Nil disables throttling.
	Limiter ratelimit.Limiter

	// AllowedOrigins restricts CORS. Empty echoes the caller's origin.
	AllowedOrigins  []string
	LeaderboardSize int

	// InternalAPIKey mounts /internal/* when set.
	InternalAPIKey string
}

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// -------------------------------------------------------------------------
	// GLOBAL MIDDLEWARE
	// -------------------------------------------------------------------------
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(RequestTimeout))

	// -------------------------------------------------------------------------
	// CORS CONFIGURATION
	// -------------------------------------------------------------------------
	r.Use(cors.Handler(corsOptions(cfg.AllowedOrigins)))

	r.Use(web.LoadSession(cfg.Sessions))

	notFound := web.Handle(func(req *web.Request, resp *web.Response) {
		resp.Fail(web.ErrNotFound)
	})
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	// -------------------------------------------------------------------------
	// INITIALIZE HANDLERS
	// -------------------------------------------------------------------------
	authHandler := handlers.NewAuthHandler(cfg.Auth, cfg.Sessions)
	userHandler := handlers.NewUserHandler(cfg.Auth, cfg.Engine, cfg.Users, cfg.LeaderboardSize)
	gamesHandler := handlers.NewGamesHandler()
	playHandler := handlers.NewPlayHandler(cfg.Engine, cfg.Blackjack)

	// -------------------------------------------------------------------------
	// PUBLIC ROUTES
	// -------------------------------------------------------------------------
	r.Get("/health", web.Handle(func(req *web.Request, resp *web.Response) {
		resp.Send(http.StatusOK, "healthy", map[string]any{
			"service":  "casino-api",
			"sessions": cfg.Sessions.Len(),
		})
	}))
	r.Post("/register", web.Handle(authHandler.Register))
	r.Post("/login", web.Handle(authHandler.Login))
	r.Get("/games", web.Handle(gamesHandler.ListGames))
	r.Get("/leaderboard", web.Handle(userHandler.Leaderboard))

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES
	// -------------------------------------------------------------------------
	r.Group(func(r chi.Router) {
		r.Use(web.RequireAuth(cfg.Sessions))

		r.Post("/auth/logout", web.Handle(authHandler.Logout))
		r.Get("/profile", web.Handle(userHandler.Profile))
		r.Put("/user/profile", web.Handle(userHandler.UpdateProfile))
		r.Put("/user/password", web.Handle(authHandler.UpdatePassword))
		r.Post("/user/balance", web.Handle(userHandler.SetBalance))
		r.Get("/user/wagers", web.Handle(userHandler.Wagers))

		r.Group(func(r chi.Router) {
			r.Use(web.LimitBets(cfg.Limiter, "play"))
			r.Post("/play/coinflip", web.Handle(playHandler.Coinflip))
			r.Post("/play/roulette", web.Handle(playHandler.Roulette))
			r.Post("/play/blackjack", web.Handle(playHandler.Blackjack))
		})
	})

	// -------------------------------------------------------------------------
	// INTERNAL API ROUTES (/internal/*)
	// -------------------------------------------------------------------------
	if cfg.InternalAPIKey != "" {
		internalHandler := handlers.NewInternalHandler(cfg.Sessions, cfg.Users)
		r.Group(func(r chi.Router) {
			r.Use(web.RequireAPIKey(cfg.InternalAPIKey))
			r.Get("/internal/stats", web.Handle(internalHandler.Stats))
			r.Post("/internal/sweep", web.Handle(internalHandler.Sweep))
		})
	}

	return r
}

func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	} else {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	return opts
}

func requestLogger() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				route := req.URL.Path
				if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimiddleware.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
				}
			},
		},
	)
}
