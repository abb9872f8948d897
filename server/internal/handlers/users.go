package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/skillswap/server/internal/services"
)

// UserHandler обслуживает публичный каталог пользователей.
type UserHandler struct {
	service services.UserService
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(s services.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Browse возвращает публичные профили, опционально отфильтрованные по ?q=.
func (h *UserHandler) Browse(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Browse(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, "UserHandler:Browse", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Avatar отдает изображение профиля пользователя {id}.
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	fileReader, info, err := h.service.Avatar(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "UserHandler:Avatar", err)
		return
	}
	defer func() {
		if closeErr := fileReader.Close(); closeErr != nil {
			log.Printf("[UserHandler:Avatar] Ошибка закрытия fileReader: %v", closeErr)
		}
	}()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err = io.Copy(w, fileReader); err != nil {
		log.Printf("[UserHandler:Avatar] Ошибка копирования аватара пользователя %s: %v", userID, err)
	}
}
