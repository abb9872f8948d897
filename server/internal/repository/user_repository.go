package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maynagashev/skillswap/models"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
	ListPublicUsers(ctx context.Context) ([]models.User, error)
}

const userColumns = `id, email, password_hash, name, location, profile_picture,
	skills_offered, skills_wanted, availability, is_public, rating, joined_at`

// userRow - строка таблицы users в представлении sqlx.
type userRow struct {
	ID             int64           `db:"id"`
	Email          string          `db:"email"`
	PasswordHash   string          `db:"password_hash"`
	Name           string          `db:"name"`
	Location       string          `db:"location"`
	ProfilePicture string          `db:"profile_picture"`
	SkillsOffered  pq.StringArray  `db:"skills_offered"`
	SkillsWanted   pq.StringArray  `db:"skills_wanted"`
	Availability   pq.StringArray  `db:"availability"`
	IsPublic       bool            `db:"is_public"`
	Rating         sql.NullFloat64 `db:"rating"`
	JoinedAt       time.Time       `db:"joined_at"`
}

func (r userRow) toModel() *models.User {
	u := &models.User{
		ID:             strconv.FormatInt(r.ID, 10),
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Name:           r.Name,
		Location:       r.Location,
		ProfilePicture: r.ProfilePicture,
		SkillsOffered:  []string(r.SkillsOffered),
		SkillsWanted:   []string(r.SkillsWanted),
		Availability:   []string(r.Availability),
		IsPublic:       r.IsPublic,
		JoinedAt:       r.JoinedAt,
	}
	if r.Rating.Valid {
		rating := r.Rating.Float64
		u.Rating = &rating
	}
	u.Normalize()
	return u
}

// parseID переводит строковый идентификатор в ключ таблицы.
// Нечисловой идентификатор заведомо не существует.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// stringArray возвращает значение для колонки text[] или nil, если поле не передано.
func stringArray(values *[]string) interface{} {
	if values == nil {
		return nil
	}
	if *values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(*values)
}

// postgresUserRepository реализует UserRepository для PostgreSQL.
type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// CreateUser создает нового пользователя в базе данных.
// Возвращает пользователя с присвоенным ID и датой регистрации.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (email, password_hash, name, location, profile_picture,
	          skills_offered, skills_wanted, availability, is_public, rating)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, joined_at`
	var (
		userID   int64
		joinedAt time.Time
	)

	created := *user
	created.Normalize() // text[] NOT NULL: nil-срез ушел бы в БД как NULL

	err := r.db.QueryRowxContext(ctx, query,
		created.Email, created.PasswordHash, created.Name, created.Location, created.ProfilePicture,
		pq.StringArray(created.SkillsOffered), pq.StringArray(created.SkillsWanted), pq.StringArray(created.Availability),
		created.IsPublic, created.Rating,
	).Scan(&userID, &joinedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[Repo] Ошибка создания пользователя: email '%s' уже занят", user.Email)
			return nil, ErrEmailTaken
		}
		log.Printf("[Repo] Непредвиденная ошибка при создании пользователя '%s': %v", user.Email, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	created.ID = strconv.FormatInt(userID, 10)
	created.JoinedAt = joinedAt

	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %d", user.Email, userID)
	return &created, nil
}

// GetUserByID находит пользователя по ID.
func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	userID, ok := parseID(id)
	if !ok {
		return nil, ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var row userRow

	err := r.db.GetContext(ctx, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[Repo] Пользователь с ID %d не найден", userID)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя ID %d: %v", userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	return row.toModel(), nil
}

// GetUserByEmail находит пользователя по email (точное совпадение).
func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	var row userRow

	err := r.db.GetContext(ctx, &row, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[Repo] Пользователь с email '%s' не найден", email)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя '%s': %v", email, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	log.Printf("[Repo] Найден пользователь '%s' (ID: %d)", email, row.ID)
	return row.toModel(), nil
}

// UpdateProfile частично обновляет профиль одним запросом.
// Непереданные поля патча (nil) сохраняют текущие значения через COALESCE.
func (r *postgresUserRepository) UpdateProfile(
	ctx context.Context,
	id string,
	patch models.ProfilePatch,
) (*models.User, error) {
	userID, ok := parseID(id)
	if !ok {
		return nil, ErrUserNotFound
	}

	query := `UPDATE users SET
	              name = COALESCE($2, name),
	              location = COALESCE($3, location),
	              profile_picture = COALESCE($4, profile_picture),
	              skills_offered = COALESCE($5::text[], skills_offered),
	              skills_wanted = COALESCE($6::text[], skills_wanted),
	              availability = COALESCE($7::text[], availability),
	              is_public = COALESCE($8, is_public),
	              rating = COALESCE($9, rating)
	          WHERE id=$1
	          RETURNING ` + userColumns
	var row userRow

	err := r.db.GetContext(ctx, &row, query, userID,
		patch.Name, patch.Location, patch.ProfilePicture,
		stringArray(patch.SkillsOffered), stringArray(patch.SkillsWanted), stringArray(patch.Availability),
		patch.IsPublic, patch.Rating,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[Repo] Обновление профиля: пользователь ID %d не найден", userID)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при обновлении профиля пользователя ID %d: %v", userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на обновление профиля: %w", err)
	}

	log.Printf("[Repo] Профиль пользователя ID %d обновлен", userID)
	return row.toModel(), nil
}

// ListPublicUsers возвращает всех пользователей с публичным профилем.
func (r *postgresUserRepository) ListPublicUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_public ORDER BY id`
	var rows []userRow

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		log.Printf("[Repo] Ошибка при получении публичных профилей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка пользователей: %w", err)
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toModel())
	}
	return users, nil
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrEmailTaken   = errors.New("email уже занят")
)
