// Package session выпускает и проверяет сессионные токены и управляет cookie сессии.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName - имя cookie, в которой хранится токен сессии.
	CookieName = "session"
	// TTL - время жизни сессии (7 дней).
	TTL = 7 * 24 * time.Hour

	issuer = "skillswap-server"
)

// ErrInvalidToken возвращается для поддельного, просроченного или испорченного токена.
var ErrInvalidToken = errors.New("невалидный токен сессии")

// Claims - полезная нагрузка токена. Subject содержит ID пользователя, ID - идентификатор токена (jti).
type Claims struct {
	jwt.RegisteredClaims
}

// UserID возвращает ID владельца сессии.
func (c *Claims) UserID() string {
	return c.Subject
}

// Manager подписывает и проверяет токены сессии (HS256).
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создает менеджер сессий с заданным секретом.
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), ttl: TTL, now: time.Now}
}

// Issue выпускает новый токен для пользователя.
func (m *Manager) Issue(userID string) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, claims, nil
}

// Parse проверяет подпись и срок действия токена.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SetCookie записывает токен в cookie сессии.
func SetCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie удаляет cookie сессии на клиенте (Max-Age=0).
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // net/http выводит отрицательное значение как Max-Age=0
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
