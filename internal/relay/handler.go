package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves the relay's three endpoints over plain HTTP. The relay is
// a localhost-only dev helper, so the CORS policy is wide open.
type Handler struct {
	store *Store
	log   *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, log: logger}
}

// Routes returns the relay's request mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /store", h.storeToken)
	mux.HandleFunc("GET /retrieve", h.retrieveToken)
	mux.HandleFunc("GET /peek", h.peekToken)
	return allowAll(mux)
}

type storeRequest struct {
	Token string `json:"token"`
}

// POST /store {token} -> {id}
func (h *Handler) storeToken(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeRelayError(w, http.StatusBadRequest, "token required")
		return
	}

	id := h.store.Store(req.Token)
	h.log.InfoContext(r.Context(), "token stored", slog.String("id", id))
	writeRelayJSON(w, http.StatusOK, map[string]string{"id": id})
}

// GET /retrieve?id=... -> {token}; one-shot, the entry is deleted on read.
func (h *Handler) retrieveToken(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	token, ok := h.store.Retrieve(id)
	if !ok {
		writeRelayError(w, http.StatusNotFound, "not found")
		return
	}
	writeRelayJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GET /peek?id=... -> {found}; does not consume the entry.
func (h *Handler) peekToken(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	writeRelayJSON(w, http.StatusOK, map[string]bool{"found": h.store.Peek(id)})
}

func allowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeRelayJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeRelayError(w http.ResponseWriter, status int, message string) {
	writeRelayJSON(w, status, map[string]string{"error": message})
}
