package rest

import (
	"net/http"

	"github.com/mgoto/recipelog/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth   *AuthHandler
	Dish   *DishHandler
	Health *HealthHandler
}

// NewRouter assembles the API mux. Auth is resolved for every request so
// handlers can read the account from the context; write endpoints decide
// themselves whether anonymous access is acceptable.
func NewRouter(h Handlers, mws ...middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)

	mux.HandleFunc("GET /api/dishes", h.Dish.List)
	mux.HandleFunc("POST /api/dishes", h.Dish.Submit)
	mux.HandleFunc("GET /api/dishes/{id}", h.Dish.Get)
	mux.HandleFunc("PUT /api/dishes/{id}/favorite", h.Dish.Favorite)
	mux.HandleFunc("POST /api/dishes/{id}/claim", h.Dish.Claim)
	mux.HandleFunc("GET /api/gallery", h.Dish.Gallery)
	mux.HandleFunc("GET /api/tags", h.Dish.Tags)

	return middleware.Chain(mws...)(mux)
}
