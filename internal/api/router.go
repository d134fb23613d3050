package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/shop-assistant/internal/api/middleware"
	"github.com/example/shop-assistant/internal/auth"
)

// NewRouter wires the HTTP routes. Session creation, health and the
// admin endpoint are open; everything else requires a session token.
func NewRouter(h *Handlers, jwtService *auth.JWTService) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/session", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/admin/reload", h.AdminReload).Methods(http.MethodPost)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(middleware.SessionMiddleware(jwtService))
	protected.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	protected.HandleFunc("/session", h.GetSession).Methods(http.MethodGet)
	protected.HandleFunc("/session", h.DeleteSession).Methods(http.MethodDelete)
	protected.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	protected.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)

	return withLogging(r)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
