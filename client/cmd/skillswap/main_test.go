package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/skillswap/models"
)

// fakeServer имитирует API: одна учетная запись и cookie "session".
type fakeServer struct {
	t        *testing.T
	mu       sync.Mutex
	lastSend models.SendSwapRequest
	patch    map[string]interface{}
}

func (f *fakeServer) authorized(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie("session")
	if err != nil || cookie.Value != "tok-alice" {
		f.writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return false
	}
	return true
}

func (f *fakeServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(f.t, json.NewEncoder(w).Encode(v))
}

func (f *fakeServer) handler() http.Handler {
	alice := models.User{ID: "1", Email: "alice@x.com", Name: "Alice"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			f.writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok-alice", Path: "/"})
		f.writeJSON(w, http.StatusOK, alice)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
		f.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.writeJSON(w, http.StatusOK, alice)
		}
	})
	mux.HandleFunc("PUT /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.mu.Lock()
			assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.patch))
			f.mu.Unlock()
			f.writeJSON(w, http.StatusOK, alice)
		}
	})
	mux.HandleFunc("POST /api/swaps/send", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.mu.Lock()
			assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.lastSend))
			f.mu.Unlock()
			f.writeJSON(w, http.StatusOK, models.SwapRequest{ID: "7", Status: models.SwapStatusPending})
		}
	})
	mux.HandleFunc("PUT /api/swaps/respond", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Request already answered"})
		}
	})
	return mux
}

func TestRun(t *testing.T) {
	fake := &fakeServer{t: t}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	sessionPath := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()
	exec := func(args ...string) (int, string, string) {
		var stdout, stderr bytes.Buffer
		base := []string{"-server-url", server.URL, "-session-file", sessionPath}
		code := run(ctx, append(base, args...), &stdout, &stderr)
		return code, stdout.String(), stderr.String()
	}

	t.Run("Без сессии", func(t *testing.T) {
		code, _, stderr := exec("me")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Требуется вход")
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		code, _, _ := exec("login", "-email", "alice@x.com", "-password", "wrong")
		assert.Equal(t, 1, code)
	})

	t.Run("Вход сохраняет сессию между запусками", func(t *testing.T) {
		code, stdout, _ := exec("login", "-email", "alice@x.com", "-password", "secret")
		require.Equal(t, 0, code)
		assert.Contains(t, stdout, `"name": "Alice"`)

		code, stdout, _ = exec("me")
		require.Equal(t, 0, code)
		assert.Contains(t, stdout, `"id": "1"`)
	})

	t.Run("Отправка запроса от имени текущего пользователя", func(t *testing.T) {
		code, stdout, _ := exec("send", "-to", "2", "-offer", "Cooking", "-want", "Guitar")
		require.Equal(t, 0, code)
		assert.Contains(t, stdout, `"status": "pending"`)
		fake.mu.Lock()
		defer fake.mu.Unlock()
		assert.Equal(t, "1", fake.lastSend.FromUserID)
		assert.Equal(t, "2", fake.lastSend.ToUserID)
		assert.Equal(t, "Guitar", fake.lastSend.SkillWanted)
	})

	t.Run("Профиль: только переданные флаги", func(t *testing.T) {
		code, _, _ := exec("profile", "-location", "Lisbon", "-public=false")
		require.Equal(t, 0, code)
		fake.mu.Lock()
		defer fake.mu.Unlock()
		assert.Equal(t, map[string]interface{}{"location": "Lisbon", "isPublic": false}, fake.patch)
	})

	t.Run("Ошибка сервера выводится", func(t *testing.T) {
		code, _, stderr := exec("respond", "-id", "7", "-status", "accepted")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Request already answered")
	})

	t.Run("Выход удаляет сессию", func(t *testing.T) {
		code, stdout, _ := exec("logout")
		require.Equal(t, 0, code)
		assert.Contains(t, stdout, "Logged out successfully")

		code, _, _ = exec("me")
		assert.Equal(t, 1, code)
	})

	t.Run("Неизвестная команда", func(t *testing.T) {
		code, _, stderr := exec("dance")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "неизвестная команда")
	})
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Version: dev")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"Guitar", "Cooking"}, splitList(" Guitar ,,Cooking"))
}
