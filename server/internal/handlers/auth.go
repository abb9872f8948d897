package handlers

import (
	"log"
	"net/http"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/middleware"
	"github.com/maynagashev/skillswap/server/internal/services"
	"github.com/maynagashev/skillswap/server/internal/session"
)

// MaxAvatarSize - максимальный размер загружаемого аватара (5 МБ).
const MaxAvatarSize = 5 << 20

// AuthHandler обрабатывает HTTP-запросы аутентификации и профиля.
type AuthHandler struct {
	service       services.AuthService
	secureCookies bool // Secure-флаг cookie сессии (вне разработки)
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: s, secureCookies: secureCookies}
}

// Signup регистрирует пользователя и выставляет cookie сессии.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeJSON(w, r, "AuthHandler:Signup", &req) {
		return
	}

	log.Printf("[AuthHandler:Signup] Попытка регистрации: %s", req.Email)

	user, token, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, "AuthHandler:Signup", err)
		return
	}

	session.SetCookie(w, token, h.secureCookies)
	writeJSON(w, http.StatusOK, user)
}

// Login проверяет email и пароль и выставляет cookie сессии.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, "AuthHandler:Login", &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "AuthHandler:Login", err)
		return
	}

	session.SetCookie(w, token, h.secureCookies)
	writeJSON(w, http.StatusOK, user)
}

// Logout отзывает текущий токен (если он есть) и очищает cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if tokenID, expiresAt, ok := middleware.GetTokenFromContext(r.Context()); ok {
		if err := h.service.Logout(r.Context(), tokenID, expiresAt); err != nil {
			writeServiceError(w, "AuthHandler:Logout", err)
			return
		}
	}

	session.ClearCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// Me возвращает профиль владельца сессии.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "AuthHandler:Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile частично обновляет профиль владельца сессии.
// Поля id, email, password и joinedAt в теле игнорируются.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	var patch models.ProfilePatch
	if !decodeJSON(w, r, "AuthHandler:UpdateProfile", &patch) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		writeServiceError(w, "AuthHandler:UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadAvatar принимает multipart-форму с полем avatar.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+1024)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		log.Printf("[AuthHandler:UploadAvatar] Ошибка чтения формы от пользователя %s: %v", userID, err)
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("[AuthHandler:UploadAvatar] Ошибка закрытия файла: %v", closeErr)
		}
	}()

	contentType := header.Header.Get("Content-Type")
	user, err := h.service.UploadAvatar(r.Context(), userID, file, header.Size, contentType)
	if err != nil {
		writeServiceError(w, "AuthHandler:UploadAvatar", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
