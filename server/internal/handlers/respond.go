package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/services"
)

// Тексты ошибок API. Клиенты сравнивают их как есть.
const (
	errInvalidBody      = "Invalid request body"
	errMissingFields    = "Missing required fields"
	errNotAuthenticated = "Not authenticated"
	errUserExists       = "User already exists"
	errInvalidCreds     = "Invalid credentials"
	errUserNotFound     = "User not found"
	errUnauthorized     = "Unauthorized"
	errRequestNotFound  = "Request not found"
	errSelfSwap         = "Cannot send a swap request to yourself"
	errInvalidStatus    = "Invalid status"
	errAlreadyAnswered  = "Request already answered"
	errAvatarNotFound   = "Avatar not found"
	errInternal         = "Internal server error"
)

// writeJSON кодирует v в тело ответа с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handlers] Ошибка кодирования ответа: %v", err)
	}
}

// writeError пишет тело {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// writeServiceError сопоставляет ошибку сервиса со статусом HTTP.
// Неизвестные ошибки превращаются в 500 без подробностей.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, errMissingFields)
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, errUserExists)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, errInvalidCreds)
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, errUserNotFound)
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, errUnauthorized)
	case errors.Is(err, services.ErrSwapNotFound):
		writeError(w, http.StatusNotFound, errRequestNotFound)
	case errors.Is(err, services.ErrSelfSwap):
		writeError(w, http.StatusBadRequest, errSelfSwap)
	case errors.Is(err, services.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, errInvalidStatus)
	case errors.Is(err, services.ErrInvalidTransition):
		writeError(w, http.StatusConflict, errAlreadyAnswered)
	case errors.Is(err, services.ErrAvatarNotFound):
		writeError(w, http.StatusNotFound, errAvatarNotFound)
	default:
		log.Printf("[%s] Внутренняя ошибка: %v", op, err)
		writeError(w, http.StatusInternalServerError, errInternal)
	}
}

// decodeJSON читает тело запроса в v и отвечает 400 при ошибке.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("[%s] Ошибка декодирования запроса: %v", op, err)
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return false
	}
	return true
}
