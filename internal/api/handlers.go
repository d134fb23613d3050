package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/shop-assistant/internal/api/middleware"
	"github.com/example/shop-assistant/internal/auth"
	"github.com/example/shop-assistant/internal/conversation"
	"github.com/example/shop-assistant/internal/domain/cart"
	"github.com/example/shop-assistant/internal/domain/pricing"
	"github.com/example/shop-assistant/internal/session"
)

// Handlers holds the HTTP surface of the assistant: session issuing,
// the chat turn endpoint, and read views over catalog and cart.
type Handlers struct {
	engine     *conversation.Engine
	sessions   session.Store
	jwtService *auth.JWTService
	adminHash  string
	reload     func() error
}

func NewHandlers(engine *conversation.Engine, sessions session.Store, jwtService *auth.JWTService, adminHash string, reload func() error) *Handlers {
	return &Handlers{
		engine:     engine,
		sessions:   sessions,
		jwtService: jwtService,
		adminHash:  adminHash,
		reload:     reload,
	}
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// CreateSession starts a fresh anonymous session and returns its token.
// The greeting is already part of the new state's transcript.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()
	state := h.engine.NewSession(sessionID)

	if err := h.sessions.Put(r.Context(), state); err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateSessionToken(sessionID)
	if err != nil {
		http.Error(w, "failed to issue session token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
		Message:   state.BotMessage,
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Message string            `json:"message"`
	Mode    conversation.Mode `json:"mode"`
	Cart    *cart.Cart        `json:"cart"`
	Summary *pricing.Summary  `json:"discount_summary,omitempty"`
}

// Chat runs one conversation turn for the caller's session.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.sessions.Get(r.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.HandleTurn(r.Context(), state, req.Message)

	if err := h.sessions.Put(r.Context(), state); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		Message: state.BotMessage,
		Mode:    state.Mode,
		Cart:    state.Cart,
		Summary: state.Summary,
	})
}

// GetSession returns the full state view, transcript included.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.loadSession(w, r)
	if state == nil || err != nil {
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// DeleteSession tears the session down. Creation and cleanup belong to
// the transport, not the conversation core.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

// GetCatalog lists the products.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Catalog().Products())
}

type cartResponse struct {
	Cart    *cart.Cart       `json:"cart"`
	Summary *pricing.Summary `json:"discount_summary,omitempty"`
}

// GetCart returns the cart with a freshly computed discount summary.
// The summary is always recomputed here, never read back from state.
func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	state, err := h.loadSession(w, r)
	if state == nil || err != nil {
		return
	}

	resp := cartResponse{Cart: state.Cart}
	if !state.Cart.IsEmpty() {
		summary := pricing.ComputeTotals(state.Cart)
		resp.Summary = &summary
	}
	respondJSON(w, http.StatusOK, resp)
}

// AdminReload re-reads the catalog and coupon files. Guarded by the
// bcrypt admin password hash from configuration.
func (h *Handlers) AdminReload(w http.ResponseWriter, r *http.Request) {
	if h.adminHash == "" || h.reload == nil {
		http.Error(w, "admin reload disabled", http.StatusServiceUnavailable)
		return
	}

	if !auth.CheckPassword(r.Header.Get("X-Admin-Password"), h.adminHash) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.reload(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "catalog and coupons reloaded"})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) loadSession(w http.ResponseWriter, r *http.Request) (*conversation.State, error) {
	sessionID := middleware.GetSessionID(r.Context())
	state, err := h.sessions.Get(r.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, err
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return state, nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
