package repository

import (
	"context"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/maynagashev/skillswap/models"
)

// copyUser возвращает глубокую копию пользователя.
func copyUser(u models.User) models.User {
	u.SkillsOffered = append([]string{}, u.SkillsOffered...)
	u.SkillsWanted = append([]string{}, u.SkillsWanted...)
	u.Availability = append([]string{}, u.Availability...)
	if u.Rating != nil {
		r := *u.Rating
		u.Rating = &r
	}
	return u
}

// MemoryUserRepository хранит пользователей в памяти процесса.
// Используется, когда DSN базы данных не задан, и в тестах.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User // В порядке регистрации
	now   func() time.Time
}

// NewMemoryUserRepository создает пустой репозиторий пользователей в памяти.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{now: time.Now}
}

// CreateUser присваивает ID вида count+1 и дату регистрации.
func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			log.Printf("[MemRepo] Ошибка создания пользователя: email '%s' уже занят", user.Email)
			return nil, ErrEmailTaken
		}
	}

	created := copyUser(*user)
	created.ID = strconv.Itoa(len(r.users) + 1)
	created.JoinedAt = r.now().UTC()
	r.users = append(r.users, created)

	log.Printf("[MemRepo] Пользователь '%s' создан с ID %s", created.Email, created.ID)
	result := copyUser(created)
	return &result, nil
}

// GetUserByID находит пользователя по ID.
func (r *MemoryUserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			result := copyUser(u)
			return &result, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetUserByEmail находит пользователя по email.
func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			result := copyUser(u)
			return &result, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateProfile накладывает патч под блокировкой записи.
func (r *MemoryUserRepository) UpdateProfile(
	_ context.Context,
	id string,
	patch models.ProfilePatch,
) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == id {
			patch.Apply(&r.users[i])
			r.users[i].Normalize()
			result := copyUser(r.users[i])
			return &result, nil
		}
	}
	return nil, ErrUserNotFound
}

// ListPublicUsers возвращает публичные профили в порядке регистрации.
func (r *MemoryUserRepository) ListPublicUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if u.IsPublic {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

// MemorySwapRepository хранит запросы на обмен в памяти процесса.
type MemorySwapRepository struct {
	mu    sync.RWMutex
	swaps []models.SwapRequest
	users UserRepository // Для проверки существования участников
	now   func() time.Time
}

// NewMemorySwapRepository создает пустой репозиторий запросов в памяти.
// Если users не nil, при создании проверяется существование участников.
func NewMemorySwapRepository(users UserRepository) *MemorySwapRepository {
	return &MemorySwapRepository{users: users, now: time.Now}
}

// CreateSwap сохраняет запрос со статусом pending.
func (r *MemorySwapRepository) CreateSwap(ctx context.Context, swap *models.SwapRequest) (*models.SwapRequest, error) {
	if r.users != nil {
		for _, id := range []string{swap.FromUserID, swap.ToUserID} {
			if _, err := r.users.GetUserByID(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := *swap
	created.ID = strconv.Itoa(len(r.swaps) + 1)
	created.Status = models.SwapStatusPending
	created.CreatedAt = r.now().UTC()
	created.UpdatedAt = created.CreatedAt
	r.swaps = append(r.swaps, created)

	log.Printf("[MemSwapRepo] Запрос на обмен (ID: %s) создан: %s -> %s",
		created.ID, created.FromUserID, created.ToUserID)
	result := created
	return &result, nil
}

// GetSwapByID находит запрос по ID.
func (r *MemorySwapRepository) GetSwapByID(_ context.Context, id string) (*models.SwapRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.swaps {
		if s.ID == id {
			result := s
			return &result, nil
		}
	}
	return nil, ErrSwapNotFound
}

// ListSwapsByUser возвращает запросы пользователя от новых к старым.
func (r *MemorySwapRepository) ListSwapsByUser(_ context.Context, userID string) ([]models.SwapRequest, error) {
	r.mu.RLock()
	swaps := make([]models.SwapRequest, 0)
	// Обход с конца: при равном времени создания первым идет добавленный позже
	for i := len(r.swaps) - 1; i >= 0; i-- {
		s := r.swaps[i]
		if s.FromUserID == userID || s.ToUserID == userID {
			swaps = append(swaps, s)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(swaps, func(i, j int) bool {
		return swaps[i].CreatedAt.After(swaps[j].CreatedAt)
	})
	return swaps, nil
}

// UpdateSwapStatus переводит запрос из from в to под одной блокировкой.
func (r *MemorySwapRepository) UpdateSwapStatus(
	_ context.Context,
	id string,
	from, to models.SwapStatus,
) (*models.SwapRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.swaps {
		if r.swaps[i].ID != id {
			continue
		}
		if r.swaps[i].Status != from {
			return nil, ErrStatusConflict
		}
		r.swaps[i].Status = to
		r.swaps[i].UpdatedAt = r.now().UTC()
		result := r.swaps[i]
		return &result, nil
	}
	return nil, ErrSwapNotFound
}
