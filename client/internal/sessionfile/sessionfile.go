// Package sessionfile сохраняет cookie сессии CLI между запусками.
// Доступ к файлу защищен блокировкой <path>.lock.
package sessionfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o700
	lockRetryDelay  = 50 * time.Millisecond
)

// ErrLocked возвращается, если блокировку не удалось получить до отмены контекста.
var ErrLocked = errors.New("файл сессии заблокирован другим процессом")

// Session - содержимое файла сессии.
type Session struct {
	ServerURL string    `json:"serverUrl"`
	Token     string    `json:"token"`
	SavedAt   time.Time `json:"savedAt"`
}

// Store читает и пишет файл сессии.
type Store struct {
	path string
	lock *flock.Flock
	now  func() time.Time
}

// New создает хранилище для файла path.
func New(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock"), now: time.Now}
}

// Path возвращает путь к файлу сессии.
func (s *Store) Path() string {
	return s.path
}

// Load возвращает токен для serverURL. Если файла нет или он сохранен
// для другого сервера, возвращается пустая строка.
func (s *Store) Load(ctx context.Context, serverURL string) (string, error) {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err := s.acquire(ctx, false); err != nil {
		return "", err
	}
	defer s.release()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения файла сессии %s: %w", s.path, err)
	}

	var sess Session
	if err = json.Unmarshal(data, &sess); err != nil {
		slog.Warn("Файл сессии поврежден, сессия не восстановлена", "path", s.path, "error", err)
		return "", nil
	}
	if sess.ServerURL != serverURL {
		slog.Info("Файл сессии относится к другому серверу", "saved", sess.ServerURL, "current", serverURL)
		return "", nil
	}
	return sess.Token, nil
}

// Save записывает токен. Пустой токен удаляет файл.
func (s *Store) Save(ctx context.Context, serverURL, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		return fmt.Errorf("ошибка создания каталога для файла сессии: %w", err)
	}
	if err := s.acquire(ctx, true); err != nil {
		return err
	}
	defer s.release()

	data, err := json.Marshal(Session{ServerURL: serverURL, Token: token, SavedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("ошибка кодирования сессии: %w", err)
	}

	// Пишем во временный файл и переименовываем
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("ошибка записи файла сессии: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ошибка сохранения файла сессии: %w", err)
	}
	slog.Debug("Сессия сохранена", "path", s.path)
	return nil
}

// Clear удаляет файл сессии.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := s.acquire(ctx, true); err != nil {
		return err
	}
	defer s.release()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла сессии: %w", err)
	}
	return nil
}

func (s *Store) acquire(ctx context.Context, exclusive bool) error {
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ErrLocked
		}
		return fmt.Errorf("ошибка блокировки файла сессии %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return ErrLocked
	}
	return nil
}

func (s *Store) release() {
	if err := s.lock.Unlock(); err != nil {
		slog.Error("Ошибка при снятии блокировки файла сессии", "lockPath", s.lock.Path(), "error", err)
	}
}
