package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/mocks"
	"github.com/maynagashev/skillswap/server/internal/repository"
	"github.com/maynagashev/skillswap/server/internal/services"
	"github.com/maynagashev/skillswap/server/internal/session"
	"github.com/maynagashev/skillswap/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuthService(
	repo *mocks.UserRepository,
) (services.AuthService, *session.Manager, *session.MemoryStore, *storage.MemoryStorage) {
	manager := session.NewManager(testSecret)
	revocations := session.NewMemoryStore()
	files := storage.NewMemoryStorage()
	return services.NewAuthService(repo, manager, revocations, files), manager, revocations, files
}

func TestNewAuthService(t *testing.T) {
	authService, _, _, _ := newAuthService(new(mocks.UserRepository))
	require.NotNil(t, authService)
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	isPrivate := false

	tests := []struct {
		name          string
		req           models.SignupRequest
		mockSetup     func(mockUserRepo *mocks.UserRepository)
		checkUser     func(t *testing.T, u *models.User)
		expectedError error
	}{
		{
			name: "Успешная регистрация со значениями по умолчанию",
			req:  models.SignupRequest{Email: "alice@x.com", Password: "secret", Name: "Alice"},
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().
					CreateUser(ctx, mock.MatchedBy(func(u *models.User) bool {
						return u.IsPublic && u.Location == "" &&
							u.SkillsOffered != nil && len(u.SkillsOffered) == 0 &&
							u.Availability != nil &&
							bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")) == nil
					})).
					Return(&models.User{ID: "1", Email: "alice@x.com", Name: "Alice", IsPublic: true}, nil).Once()
			},
			checkUser: func(t *testing.T, u *models.User) {
				assert.Equal(t, "1", u.ID)
			},
		},
		{
			name: "Явно скрытый профиль",
			req:  models.SignupRequest{Email: "bob@x.com", Password: "secret", Name: "Bob", IsPublic: &isPrivate},
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().
					CreateUser(ctx, mock.MatchedBy(func(u *models.User) bool { return !u.IsPublic })).
					Return(&models.User{ID: "2", Email: "bob@x.com"}, nil).Once()
			},
			checkUser: func(t *testing.T, u *models.User) {
				assert.False(t, u.IsPublic)
			},
		},
		{
			name:          "Не заполнен email",
			req:           models.SignupRequest{Password: "secret", Name: "NoEmail"},
			mockSetup:     func(*mocks.UserRepository) {},
			expectedError: services.ErrValidation,
		},
		{
			name: "Email занят",
			req:  models.SignupRequest{Email: "taken@x.com", Password: "secret", Name: "Taken"},
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().
					CreateUser(ctx, mock.AnythingOfType("*models.User")).
					Return(nil, repository.ErrEmailTaken).Once()
			},
			expectedError: services.ErrEmailTaken,
		},
		{
			name: "Ошибка репозитория при создании",
			req:  models.SignupRequest{Email: "err@x.com", Password: "secret", Name: "Err"},
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().
					CreateUser(ctx, mock.AnythingOfType("*models.User")).
					Return(nil, errors.New("some db error")).Once()
			},
			expectedError: errors.New("внутренняя ошибка сервера при создании пользователя"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(mocks.UserRepository)
			tt.mockSetup(mockUserRepo)
			authService, manager, _, _ := newAuthService(mockUserRepo)

			user, token, err := authService.Signup(ctx, tt.req)

			if tt.expectedError != nil {
				require.Error(t, err)
				require.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, parseErr := manager.Parse(token)
				require.NoError(t, parseErr)
				assert.Equal(t, user.ID, claims.UserID())
				tt.checkUser(t, user)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	email := "alice@x.com"
	password := "password123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err, "Не удалось сгенерировать хеш пароля для тестов")

	correctUser := &models.User{ID: "1", Email: email, PasswordHash: string(hashedPasswordBytes)}

	tests := []struct {
		name          string
		passwordToUse string
		mockSetup     func(mockUserRepo *mocks.UserRepository)
		expectedError error
	}{
		{
			name:          "Успешный вход",
			passwordToUse: password,
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail(ctx, email).Return(correctUser, nil).Once()
			},
		},
		{
			name:          "Пользователь не найден",
			passwordToUse: password,
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail(ctx, email).Return(nil, repository.ErrUserNotFound).Once()
			},
			expectedError: services.ErrInvalidCredentials,
		},
		{
			name:          "Неверный пароль",
			passwordToUse: "wrongpassword",
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail(ctx, email).Return(correctUser, nil).Once()
			},
			expectedError: services.ErrInvalidCredentials,
		},
		{
			name:          "Ошибка репозитория при поиске",
			passwordToUse: password,
			mockSetup: func(mockUserRepo *mocks.UserRepository) {
				mockUserRepo.EXPECT().GetUserByEmail(ctx, email).Return(nil, errors.New("some db error")).Once()
			},
			expectedError: errors.New("внутренняя ошибка сервера при поиске пользователя"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(mocks.UserRepository)
			tt.mockSetup(mockUserRepo)
			authService, _, _, _ := newAuthService(mockUserRepo)

			user, token, loginErr := authService.Login(ctx, email, tt.passwordToUse)

			if tt.expectedError != nil {
				require.Error(t, loginErr)
				require.EqualError(t, loginErr, tt.expectedError.Error())
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, loginErr)
				assert.NotEmpty(t, token)
				assert.Equal(t, "1", user.ID)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	authService, _, revocations, _ := newAuthService(new(mocks.UserRepository))

	require.NoError(t, authService.Logout(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := revocations.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("Без токена", func(t *testing.T) {
		require.NoError(t, authService.Logout(ctx, "", time.Time{}))
	})

	t.Run("Истекший токен не записывается", func(t *testing.T) {
		require.NoError(t, authService.Logout(ctx, "jti-old", time.Now().Add(-time.Hour)))
		revoked, err := revocations.IsRevoked(ctx, "jti-old")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		repoUser      *models.User
		repoErr       error
		expectedError error
	}{
		{name: "Пользователь найден", repoUser: &models.User{ID: "1", Name: "Alice"}},
		{name: "Пользователь удален", repoErr: repository.ErrUserNotFound, expectedError: services.ErrUserNotFound},
		{
			name:          "Ошибка репозитория",
			repoErr:       errors.New("db down"),
			expectedError: errors.New("внутренняя ошибка сервера при получении пользователя"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(mocks.UserRepository)
			mockUserRepo.EXPECT().GetUserByID(ctx, "1").Return(tt.repoUser, tt.repoErr).Once()
			authService, _, _, _ := newAuthService(mockUserRepo)

			user, err := authService.CurrentUser(ctx, "1")
			if tt.expectedError != nil {
				require.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Alice", user.Name)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	location := "Berlin"
	patch := models.ProfilePatch{Location: &location}

	t.Run("Успешное обновление", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.EXPECT().UpdateProfile(ctx, "1", patch).
			Return(&models.User{ID: "1", Location: location}, nil).Once()
		authService, _, _, _ := newAuthService(mockUserRepo)

		user, err := authService.UpdateProfile(ctx, "1", patch)
		require.NoError(t, err)
		assert.Equal(t, location, user.Location)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.EXPECT().UpdateProfile(ctx, "9", patch).Return(nil, repository.ErrUserNotFound).Once()
		authService, _, _, _ := newAuthService(mockUserRepo)

		_, err := authService.UpdateProfile(ctx, "9", patch)
		require.ErrorIs(t, err, services.ErrUserNotFound)
	})
}

func TestAuthService_UploadAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешная загрузка", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.EXPECT().GetUserByID(ctx, "1").Return(&models.User{ID: "1"}, nil).Once()
		mockUserRepo.EXPECT().
			UpdateProfile(ctx, "1", mock.MatchedBy(func(p models.ProfilePatch) bool {
				return p.ProfilePicture != nil && strings.HasPrefix(*p.ProfilePicture, "/api/users/1/avatar?v=")
			})).
			Return(&models.User{ID: "1", ProfilePicture: "/api/users/1/avatar?v=x"}, nil).Once()
		authService, _, _, files := newAuthService(mockUserRepo)

		user, err := authService.UploadAvatar(ctx, "1", strings.NewReader("img"), 3, "image/png")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ProfilePicture)

		rc, info, err := files.DownloadFile(ctx, services.AvatarObjectKey("1"))
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "img", string(data))
		assert.Equal(t, "image/png", info.ContentType)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("Не изображение", func(t *testing.T) {
		authService, _, _, _ := newAuthService(new(mocks.UserRepository))

		_, err := authService.UploadAvatar(ctx, "1", strings.NewReader("text"), 4, "text/plain")
		require.ErrorIs(t, err, services.ErrValidation)
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.EXPECT().GetUserByID(ctx, "9").Return(nil, repository.ErrUserNotFound).Once()
		authService, _, _, files := newAuthService(mockUserRepo)

		_, err := authService.UploadAvatar(ctx, "9", strings.NewReader("img"), 3, "image/png")
		require.ErrorIs(t, err, services.ErrUserNotFound)
		_, _, err = files.DownloadFile(ctx, services.AvatarObjectKey("9"))
		require.ErrorIs(t, err, storage.ErrObjectNotFound)
	})
}
