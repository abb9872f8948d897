package handlers

import (
	"log"
	"net/http"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/middleware"
	"github.com/maynagashev/skillswap/server/internal/services"
)

// SwapHandler обрабатывает запросы на обмен навыками.
type SwapHandler struct {
	service services.SwapService
}

// NewSwapHandler создает новый экземпляр SwapHandler.
func NewSwapHandler(s services.SwapService) *SwapHandler {
	return &SwapHandler{service: s}
}

// Send создает запрос на обмен от имени владельца сессии.
func (h *SwapHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	var req models.SendSwapRequest
	if !decodeJSON(w, r, "SwapHandler:Send", &req) {
		return
	}

	log.Printf("[SwapHandler:Send] Пользователь %s отправляет запрос пользователю %s", userID, req.ToUserID)

	created, err := h.service.Send(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, "SwapHandler:Send", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// List возвращает входящие и исходящие запросы владельца сессии.
func (h *SwapHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	swaps, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "SwapHandler:List", err)
		return
	}
	writeJSON(w, http.StatusOK, swaps)
}

// Respond принимает или отклоняет входящий запрос.
func (h *SwapHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	var req models.RespondSwapRequest
	if !decodeJSON(w, r, "SwapHandler:Respond", &req) {
		return
	}
	if req.RequestID == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	log.Printf("[SwapHandler:Respond] Пользователь %s отвечает %q на запрос %s", userID, req.Status, req.RequestID)

	updated, err := h.service.Respond(r.Context(), userID, req.RequestID, req.Status)
	if err != nil {
		writeServiceError(w, "SwapHandler:Respond", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Summary возвращает счетчики запросов для дашборда.
func (h *SwapHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "SwapHandler:Summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
