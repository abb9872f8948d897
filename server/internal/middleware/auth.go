package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/session"
)

// Тип для ключа контекста.
type contextKey string

// Ключи для хранения данных сессии в контексте.
const (
	UserIDKey    contextKey = "userID"
	TokenIDKey   contextKey = "tokenID"
	ExpiresAtKey contextKey = "expiresAt"
)

const errNotAuthenticated = "Not authenticated"

// TokenParser проверяет токен сессии.
type TokenParser interface {
	Parse(token string) (*session.Claims, error)
}

// writeError пишет тело {"error": msg} с указанным статусом.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg}); err != nil {
		log.Printf("[Middleware] Ошибка записи ответа: %v", err)
	}
}

// Authenticator проверяет cookie сессии и кладет данные сессии в контекст.
// Отозванный токен считается отсутствующим.
func Authenticator(tokens TokenParser, revocations session.RevocationStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(w, r, tokens, revocations)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID())
			ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
			ctx = context.WithValue(ctx, ExpiresAtKey, claims.ExpiresAt.Time)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticator кладет данные сессии в контекст, если cookie валидна,
// и пропускает запрос дальше в любом случае.
func OptionalAuthenticator(tokens TokenParser, revocations session.RevocationStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Parse(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID())
			ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
			ctx = context.WithValue(ctx, ExpiresAtKey, claims.ExpiresAt.Time)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveClaims(
	w http.ResponseWriter,
	r *http.Request,
	tokens TokenParser,
	revocations session.RevocationStore,
) (*session.Claims, bool) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		log.Println("[AuthMiddleware] Cookie сессии отсутствует")
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return nil, false
	}

	claims, err := tokens.Parse(cookie.Value)
	if err != nil {
		log.Printf("[AuthMiddleware] Ошибка валидации токена: %v", err)
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return nil, false
	}

	revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		log.Printf("[AuthMiddleware] Ошибка проверки отзыва токена %s: %v", claims.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	if revoked {
		log.Printf("[AuthMiddleware] Токен %s отозван", claims.ID)
		writeError(w, http.StatusUnauthorized, errNotAuthenticated)
		return nil, false
	}

	log.Printf("[AuthMiddleware] Пользователь %s успешно аутентифицирован", claims.UserID())
	return claims, true
}

// GetUserIDFromContext извлекает ID пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetTokenFromContext извлекает ID токена и время его истечения.
func GetTokenFromContext(ctx context.Context) (string, time.Time, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	if !ok || tokenID == "" {
		return "", time.Time{}, false
	}
	expiresAt, _ := ctx.Value(ExpiresAtKey).(time.Time)
	return tokenID, expiresAt, true
}
