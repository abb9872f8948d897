package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/repository"
	"github.com/maynagashev/skillswap/server/internal/session"
	"github.com/maynagashev/skillswap/server/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// AuthService определяет интерфейс для сервиса аутентификации и профиля.
type AuthService interface {
	// Signup регистрирует пользователя и открывает для него сессию.
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error)
	// Login проверяет email и пароль и открывает сессию.
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	// Logout отзывает токен до истечения его срока.
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
	UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (*models.User, error)
}

// TokenIssuer выпускает токены сессии.
type TokenIssuer interface {
	Issue(userID string) (string, *session.Claims, error)
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo    repository.UserRepository
	tokens      TokenIssuer
	revocations session.RevocationStore
	files       storage.FileStorage
	now         func() time.Time
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	revocations session.RevocationStore,
	files storage.FileStorage,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		revocations: revocations,
		files:       files,
		now:         time.Now,
	}
}

// Signup регистрирует нового пользователя.
// Необязательные поля получают значения по умолчанию, isPublic - true, если явно не передан false.
func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, "", ErrValidation
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService:Signup] Ошибка хеширования пароля для '%s': %v", req.Email, err)
		return nil, "", errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{
		Email:         req.Email,
		PasswordHash:  string(hashedPassword),
		Name:          req.Name,
		Location:      req.Location,
		SkillsOffered: req.SkillsOffered,
		SkillsWanted:  req.SkillsWanted,
		Availability:  req.Availability,
		IsPublic:      req.IsPublic == nil || *req.IsPublic,
	}
	user.Normalize()

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			log.Printf("[AuthService:Signup] Попытка регистрации с занятым email: %s", req.Email)
			return nil, "", ErrEmailTaken
		}
		log.Printf("[AuthService:Signup] Ошибка репозитория при регистрации '%s': %v", req.Email, err)
		return nil, "", errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	token, err := s.issue(created.ID)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[AuthService:Signup] Пользователь '%s' зарегистрирован с ID %s", created.Email, created.ID)
	return created, token, nil
}

// Login аутентифицирует пользователя по email и паролю.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService:Login] Попытка входа несуществующего пользователя: %s", email)
			return nil, "", ErrInvalidCredentials
		}
		log.Printf("[AuthService:Login] Ошибка репозитория при поиске '%s': %v", email, err)
		return nil, "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService:Login] Неверный пароль для пользователя: %s", email)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[AuthService:Login] Пользователь '%s' успешно аутентифицирован", email)
	return user, token, nil
}

func (s *authService) issue(userID string) (string, error) {
	token, _, err := s.tokens.Issue(userID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации токена для пользователя %s: %v", userID, err)
		return "", errors.New("внутренняя ошибка сервера при генерации токена")
	}
	return token, nil
}

// Logout отзывает токен на оставшееся время его жизни.
// Без токена выход ничего не делает.
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if err := s.revocations.Revoke(ctx, tokenID, ttl); err != nil {
		log.Printf("[AuthService:Logout] Ошибка отзыва токена %s: %v", tokenID, err)
		return errors.New("внутренняя ошибка сервера при завершении сессии")
	}
	log.Printf("[AuthService:Logout] Токен %s отозван", tokenID)
	return nil
}

// CurrentUser возвращает владельца сессии.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[AuthService:CurrentUser] Ошибка репозитория для пользователя %s: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении пользователя")
	}
	return user, nil
}

// UpdateProfile применяет частичное обновление профиля.
func (s *authService) UpdateProfile(
	ctx context.Context,
	userID string,
	patch models.ProfilePatch,
) (*models.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[AuthService:UpdateProfile] Ошибка репозитория для пользователя %s: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении профиля")
	}
	log.Printf("[AuthService:UpdateProfile] Профиль пользователя %s обновлен", userID)
	return user, nil
}

// UploadAvatar сохраняет изображение в хранилище и проставляет ссылку в profilePicture.
func (s *authService) UploadAvatar(
	ctx context.Context,
	userID string,
	r io.Reader,
	size int64,
	contentType string,
) (*models.User, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrValidation
	}
	if _, err := s.CurrentUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.files.UploadFile(ctx, AvatarObjectKey(userID), r, size, contentType); err != nil {
		log.Printf("[AuthService:UploadAvatar] Ошибка загрузки аватара пользователя %s: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при загрузке аватара")
	}

	// Параметр v меняется при каждой загрузке
	picture := fmt.Sprintf("/api/users/%s/avatar?v=%s", userID, uuid.NewString())
	return s.UpdateProfile(ctx, userID, models.ProfilePatch{ProfilePicture: &picture})
}

// AvatarObjectKey возвращает ключ объекта с аватаром пользователя.
func AvatarObjectKey(userID string) string {
	return "avatars/" + userID
}
