package sandbox

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"stockdeck/internal/middleware"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
)

// RouterConfig holds the handlers and services the router wires together.
type RouterConfig struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Stores    *StoreHandler
	SKUs      *SKUHandler
	Inventory *InventoryHandler
	Hub       *Hub
	Tokens    *TokenService
	Store     *Store
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})
	r.Post("/api/auth/login", cfg.Auth.Login)

	// WebSocket endpoint authenticates via query parameter, not middleware.
	r.Get("/api/ws", cfg.Hub.ServeWS(cfg.Tokens))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, apierror.NotFound("route not found"))
	})

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Store))

		r.Route("/api", func(r chi.Router) {
			r.Route("/profile", func(r chi.Router) {
				r.Get("/", cfg.Auth.GetProfile)
				r.Put("/password", cfg.Auth.ChangePassword)
			})

			// Catalog reads are open to every authenticated user.
			r.Route("/skus", func(r chi.Router) {
				r.Get("/", cfg.SKUs.List)
				r.Get("/categories", cfg.SKUs.Categories)
				r.Get("/{id}", cfg.SKUs.Get)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", cfg.Inventory.List)
				r.Get("/{id}", cfg.Inventory.Get)
				r.Post("/{id}/adjust", cfg.Inventory.Adjust)
			})

			// Manager-only surface.
			r.Route("/manager", func(r chi.Router) {
				r.Use(ManagerOnly)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", cfg.Users.List)
					r.Post("/", cfg.Users.Create)
					r.Put("/", cfg.Users.Update)
					r.Delete("/{id}", cfg.Users.Delete)
				})

				r.Route("/stores", func(r chi.Router) {
					r.Get("/", cfg.Stores.List)
					r.Post("/", cfg.Stores.Create)
					r.Route("/staff", func(r chi.Router) {
						r.Get("/", cfg.Stores.ListStaff)
						r.Post("/", cfg.Stores.AddStaff)
						r.Delete("/{id}", cfg.Stores.DeleteStaff)
					})
					r.Delete("/{id}", cfg.Stores.Delete)
				})

				r.Route("/skus", func(r chi.Router) {
					r.Post("/", cfg.SKUs.Create)
					r.Put("/{id}", cfg.SKUs.Update)
					r.Delete("/{id}", cfg.SKUs.Delete)
				})

				r.Route("/inventory", func(r chi.Router) {
					r.Post("/", cfg.Inventory.Create)
					r.Put("/{id}", cfg.Inventory.Update)
					r.Delete("/{id}", cfg.Inventory.Delete)
				})
			})
		})
	})

	return r
}
