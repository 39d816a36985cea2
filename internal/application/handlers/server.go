// Package handlers exposes the campaign services over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ersonp/campaign-core/internal/domain/services"
	"github.com/ersonp/campaign-core/internal/infrastructure/config"
	"github.com/ersonp/campaign-core/internal/infrastructure/metrics"
)

// idPattern restricts {id} to digits so other values fall through to 404.
const idPattern = "{id:[0-9]+}"

// Services groups the domain services the API depends on.
type Services struct {
	Auth        *services.AuthService
	Journals    *services.JournalService
	Entities    *services.EntityService
	EntityTypes *services.EntityTypeService
}

// Server is the HTTP API server.
type Server struct {
	logger zerolog.Logger
	server *http.Server
}

// NewServer builds the router and the underlying http.Server.
func NewServer(cfg config.ServerConfig, svc Services, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      NewRouter(cfg, svc, m, logger),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("server started")
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	return s.server.Shutdown(ctx)
}

// NewRouter wires every route and middleware.
func NewRouter(cfg config.ServerConfig, svc Services, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	cookie := cookieSettings{name: cfg.CookieName, secure: cfg.CookieSecure, ttl: cfg.SessionTTL}
	authHandler := NewAuthHandler(svc.Auth, m, cookie)
	journalHandler := NewJournalHandler(svc.Journals)
	entityHandler := NewEntityHandler(svc.Entities, svc.EntityTypes)
	typeHandler := NewEntityTypeHandler(svc.EntityTypes)
	loginLimiter := newIPLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)

	r := mux.NewRouter()
	r.Use(captureRoute)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", authHandler.HandleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", loginLimiter.middleware(authHandler.HandleLogin)).Methods(http.MethodPost)
	api.HandleFunc("/logout", authHandler.HandleLogout).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(requireAuth(svc.Auth, cfg.CookieName))

	protected.HandleFunc("/user", authHandler.HandleGetUser).Methods(http.MethodGet)
	protected.HandleFunc("/user", authHandler.HandleDeleteUser).Methods(http.MethodDelete)

	protected.HandleFunc("/journals", journalHandler.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/journals", journalHandler.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/journals/"+idPattern, journalHandler.HandleGet).Methods(http.MethodGet)
	protected.HandleFunc("/journals/"+idPattern, journalHandler.HandleUpdate).Methods(http.MethodPatch)
	protected.HandleFunc("/journals/"+idPattern, journalHandler.HandleDelete).Methods(http.MethodDelete)
	protected.HandleFunc("/journals/"+idPattern+"/mentions", journalHandler.HandleMentions).Methods(http.MethodGet)

	protected.HandleFunc("/entities", entityHandler.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/entities", entityHandler.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/entities/"+idPattern, entityHandler.HandleGet).Methods(http.MethodGet)
	protected.HandleFunc("/entities/"+idPattern, entityHandler.HandleUpdate).Methods(http.MethodPatch)
	protected.HandleFunc("/entities/"+idPattern, entityHandler.HandleDelete).Methods(http.MethodDelete)
	protected.HandleFunc("/entities/"+idPattern+"/references", entityHandler.HandleReferences).Methods(http.MethodGet)
	protected.HandleFunc("/entities/"+idPattern+"/mentions", entityHandler.HandleMentions).Methods(http.MethodGet)

	protected.HandleFunc("/entity-types", typeHandler.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/entity-types/{name}", typeHandler.HandleDescribe).Methods(http.MethodGet)

	return observe(logger, m, recoverPanics(r))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
