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

// SwapRepository определяет методы для работы с запросами на обмен.
type SwapRepository interface {
	CreateSwap(ctx context.Context, swap *models.SwapRequest) (*models.SwapRequest, error)
	GetSwapByID(ctx context.Context, id string) (*models.SwapRequest, error)
	// ListSwapsByUser возвращает запросы, где пользователь отправитель или получатель,
	// от новых к старым.
	ListSwapsByUser(ctx context.Context, userID string) ([]models.SwapRequest, error)
	// UpdateSwapStatus меняет статус только если текущий статус равен from.
	UpdateSwapStatus(ctx context.Context, id string, from, to models.SwapStatus) (*models.SwapRequest, error)
}

const swapColumns = `id, from_user_id, to_user_id, from_user_name, to_user_name,
	skill_offered, skill_wanted, message, status, created_at, updated_at`

// swapRow - строка таблицы swap_requests.
type swapRow struct {
	ID           int64     `db:"id"`
	FromUserID   int64     `db:"from_user_id"`
	ToUserID     int64     `db:"to_user_id"`
	FromUserName string    `db:"from_user_name"`
	ToUserName   string    `db:"to_user_name"`
	SkillOffered string    `db:"skill_offered"`
	SkillWanted  string    `db:"skill_wanted"`
	Message      string    `db:"message"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r swapRow) toModel() *models.SwapRequest {
	return &models.SwapRequest{
		ID:           strconv.FormatInt(r.ID, 10),
		FromUserID:   strconv.FormatInt(r.FromUserID, 10),
		ToUserID:     strconv.FormatInt(r.ToUserID, 10),
		FromUserName: r.FromUserName,
		ToUserName:   r.ToUserName,
		SkillOffered: r.SkillOffered,
		SkillWanted:  r.SkillWanted,
		Message:      r.Message,
		Status:       models.SwapStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// postgresSwapRepository реализует SwapRepository для PostgreSQL.
type postgresSwapRepository struct {
	db *sqlx.DB
}

// NewPostgresSwapRepository создает новый экземпляр репозитория запросов на обмен.
func NewPostgresSwapRepository(db *sqlx.DB) SwapRepository {
	return &postgresSwapRepository{db: db}
}

// CreateSwap сохраняет новый запрос. Статус всегда pending.
func (r *postgresSwapRepository) CreateSwap(
	ctx context.Context,
	swap *models.SwapRequest,
) (*models.SwapRequest, error) {
	fromID, okFrom := parseID(swap.FromUserID)
	toID, okTo := parseID(swap.ToUserID)
	if !okFrom || !okTo {
		return nil, ErrUserNotFound
	}

	query := `INSERT INTO swap_requests (from_user_id, to_user_id, from_user_name, to_user_name,
	          skill_offered, skill_wanted, message, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
	          RETURNING ` + swapColumns
	var row swapRow

	err := r.db.GetContext(ctx, &row, query,
		fromID, toID, swap.FromUserName, swap.ToUserName,
		swap.SkillOffered, swap.SkillWanted, swap.Message,
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Printf("[SwapRepo] Ошибка создания запроса: участник %d или %d не существует", fromID, toID)
			return nil, ErrUserNotFound
		}
		log.Printf("[SwapRepo] Непредвиденная ошибка при создании запроса %d -> %d: %v", fromID, toID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание обмена: %w", err)
	}

	log.Printf("[SwapRepo] Запрос на обмен (ID: %d) создан: %d -> %d", row.ID, fromID, toID)
	return row.toModel(), nil
}

// GetSwapByID находит запрос на обмен по ID.
func (r *postgresSwapRepository) GetSwapByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	swapID, ok := parseID(id)
	if !ok {
		return nil, ErrSwapNotFound
	}

	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id=$1`
	var row swapRow

	err := r.db.GetContext(ctx, &row, query, swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[SwapRepo] Запрос на обмен ID %d не найден", swapID)
			return nil, ErrSwapNotFound
		}
		log.Printf("[SwapRepo] Ошибка при поиске запроса ID %d: %v", swapID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение обмена: %w", err)
	}

	return row.toModel(), nil
}

// ListSwapsByUser возвращает входящие и исходящие запросы пользователя.
func (r *postgresSwapRepository) ListSwapsByUser(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	uid, ok := parseID(userID)
	if !ok {
		return []models.SwapRequest{}, nil
	}

	query := `SELECT ` + swapColumns + `
	          FROM swap_requests
	          WHERE from_user_id=$1 OR to_user_id=$1
	          ORDER BY created_at DESC, id DESC`
	var rows []swapRow

	if err := r.db.SelectContext(ctx, &rows, query, uid); err != nil {
		log.Printf("[SwapRepo] Ошибка при получении запросов пользователя ID %d: %v", uid, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка обменов: %w", err)
	}

	swaps := make([]models.SwapRequest, 0, len(rows))
	for _, row := range rows {
		swaps = append(swaps, *row.toModel())
	}

	log.Printf("[SwapRepo] Получено %d запросов для пользователя ID %d", len(swaps), uid)
	return swaps, nil
}

// UpdateSwapStatus атомарно переводит запрос из статуса from в статус to.
// Если запрос существует, но его статус уже другой, возвращает ErrStatusConflict.
func (r *postgresSwapRepository) UpdateSwapStatus(
	ctx context.Context,
	id string,
	from, to models.SwapStatus,
) (*models.SwapRequest, error) {
	swapID, ok := parseID(id)
	if !ok {
		return nil, ErrSwapNotFound
	}

	query := `UPDATE swap_requests SET status=$3, updated_at=NOW()
	          WHERE id=$1 AND status=$2
	          RETURNING ` + swapColumns
	var row swapRow

	err := r.db.GetContext(ctx, &row, query, swapID, string(from), string(to))
	if err == nil {
		log.Printf("[SwapRepo] Статус запроса ID %d изменен: %s -> %s", swapID, from, to)
		return row.toModel(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("[SwapRepo] Ошибка при обновлении статуса запроса ID %d: %v", swapID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на обновление статуса: %w", err)
	}

	// Ни одна строка не обновлена: запроса нет или статус уже изменен
	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM swap_requests WHERE id=$1)`, swapID)
	if err != nil {
		log.Printf("[SwapRepo] Ошибка при проверке существования запроса ID %d: %v", swapID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на проверку обмена: %w", err)
	}
	if !exists {
		return nil, ErrSwapNotFound
	}

	log.Printf("[SwapRepo] Статус запроса ID %d уже не %s", swapID, from)
	return nil, ErrStatusConflict
}

// Кастомные ошибки репозитория запросов.
var (
	ErrSwapNotFound   = errors.New("запрос на обмен не найден")
	ErrStatusConflict = errors.New("статус запроса на обмен уже изменен")
)
