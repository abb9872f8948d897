package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/repository"
	"github.com/maynagashev/skillswap/server/internal/storage"
)

// UserService - публичный каталог пользователей.
type UserService interface {
	// Browse возвращает публичные профили без email. Пустой query возвращает всех.
	Browse(ctx context.Context, query string) ([]models.User, error)
	Avatar(ctx context.Context, userID string) (io.ReadCloser, *storage.ObjectInfo, error)
}

var _ UserService = (*userService)(nil)

type userService struct {
	userRepo repository.UserRepository
	files    storage.FileStorage
}

// NewUserService создает сервис каталога.
func NewUserService(userRepo repository.UserRepository, files storage.FileStorage) UserService {
	return &userService{userRepo: userRepo, files: files}
}

// Browse ищет без учета регистра по имени, предлагаемым навыкам и городу.
func (s *userService) Browse(ctx context.Context, query string) ([]models.User, error) {
	users, err := s.userRepo.ListPublicUsers(ctx)
	if err != nil {
		log.Printf("[UserService:Browse] Ошибка репозитория: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при получении каталога")
	}

	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if !u.IsPublic {
			continue
		}
		if query != "" && !matches(u, query) {
			continue
		}
		result = append(result, u.Public())
	}
	return result, nil
}

func matches(u models.User, query string) bool {
	if strings.Contains(strings.ToLower(u.Name), query) ||
		strings.Contains(strings.ToLower(u.Location), query) {
		return true
	}
	for _, skill := range u.SkillsOffered {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

// Avatar отдает изображение профиля пользователя.
func (s *userService) Avatar(ctx context.Context, userID string) (io.ReadCloser, *storage.ObjectInfo, error) {
	rc, info, err := s.files.DownloadFile(ctx, AvatarObjectKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrAvatarNotFound
		}
		log.Printf("[UserService:Avatar] Ошибка хранилища для пользователя %s: %v", userID, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при получении аватара")
	}
	return rc, info, nil
}
