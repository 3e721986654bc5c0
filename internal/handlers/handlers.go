package handlers

import (
	"VaultKeeper/internal/config"
	"VaultKeeper/internal/middleware"
	"VaultKeeper/internal/repo"
	"VaultKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	vaultService *service.VaultService,
	history *service.HistoryRecorder,
	audits repo.AuditRepository,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	vaultHandler := NewVaultHandler(vaultService, history, audits, logger)

	r.Route("/api/vault", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", vaultHandler.List)
		r.Post("/", vaultHandler.Create)
		r.Get("/history", vaultHandler.AllHistory)
		r.Get("/audit", vaultHandler.Audit)
		r.Post("/reused", vaultHandler.CheckReused)
		r.Post("/rescan", vaultHandler.Rescan)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", vaultHandler.Get)
			r.Patch("/", vaultHandler.Update)
			r.Delete("/", vaultHandler.Remove)
			r.Get("/password", vaultHandler.Password)
			r.Get("/history", vaultHandler.History)
			r.Patch("/security", vaultHandler.UpdateSecurity)
		})
	})

	return &Handler{Router: r}
}
