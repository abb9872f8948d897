package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/repository"
)

// SwapService реализует жизненный цикл запросов на обмен навыками.
type SwapService interface {
	Send(ctx context.Context, actingUserID string, req models.SendSwapRequest) (*models.SwapRequest, error)
	List(ctx context.Context, userID string) ([]models.SwapRequest, error)
	Respond(ctx context.Context, actingUserID, requestID string, status models.SwapStatus) (*models.SwapRequest, error)
	Summary(ctx context.Context, userID string) (*models.SwapSummary, error)
}

var _ SwapService = (*swapService)(nil)

type swapService struct {
	swapRepo repository.SwapRepository
	userRepo repository.UserRepository
}

// NewSwapService создает сервис запросов на обмен.
func NewSwapService(swapRepo repository.SwapRepository, userRepo repository.UserRepository) SwapService {
	return &swapService{swapRepo: swapRepo, userRepo: userRepo}
}

// Send создает запрос от имени actingUserID. Статус всегда pending,
// имена участников берутся из профилей, а не из тела запроса.
func (s *swapService) Send(
	ctx context.Context,
	actingUserID string,
	req models.SendSwapRequest,
) (*models.SwapRequest, error) {
	if req.FromUserID != actingUserID {
		log.Printf("[SwapService:Send] Пользователь %s пытается отправить запрос от имени %s", actingUserID, req.FromUserID)
		return nil, ErrForbidden
	}
	if req.ToUserID == "" || strings.TrimSpace(req.SkillOffered) == "" || strings.TrimSpace(req.SkillWanted) == "" {
		return nil, ErrValidation
	}
	if req.ToUserID == actingUserID {
		return nil, ErrSelfSwap
	}

	from, err := s.userRepo.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, userLookupError("Send", actingUserID, err)
	}
	to, err := s.userRepo.GetUserByID(ctx, req.ToUserID)
	if err != nil {
		return nil, userLookupError("Send", req.ToUserID, err)
	}

	created, err := s.swapRepo.CreateSwap(ctx, &models.SwapRequest{
		FromUserID:   from.ID,
		ToUserID:     to.ID,
		FromUserName: from.Name,
		ToUserName:   to.Name,
		SkillOffered: req.SkillOffered,
		SkillWanted:  req.SkillWanted,
		Message:      req.Message,
		Status:       models.SwapStatusPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[SwapService:Send] Ошибка репозитория: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при создании запроса")
	}

	log.Printf("[SwapService:Send] Запрос %s создан: %s -> %s", created.ID, created.FromUserID, created.ToUserID)
	return created, nil
}

func userLookupError(op, userID string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		log.Printf("[SwapService:%s] Пользователь %s не найден", op, userID)
		return ErrUserNotFound
	}
	log.Printf("[SwapService:%s] Ошибка репозитория при поиске пользователя %s: %v", op, userID, err)
	return errors.New("внутренняя ошибка сервера при поиске пользователя")
}

// List возвращает входящие и исходящие запросы пользователя, новые первыми.
func (s *swapService) List(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	swaps, err := s.swapRepo.ListSwapsByUser(ctx, userID)
	if err != nil {
		log.Printf("[SwapService:List] Ошибка репозитория для пользователя %s: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении запросов")
	}
	return swaps, nil
}

// Respond принимает или отклоняет запрос. Отвечать может только получатель
// и только пока запрос в статусе pending.
func (s *swapService) Respond(
	ctx context.Context,
	actingUserID, requestID string,
	status models.SwapStatus,
) (*models.SwapRequest, error) {
	if !status.IsResponse() {
		return nil, ErrInvalidStatus
	}

	swap, err := s.swapRepo.GetSwapByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return nil, ErrSwapNotFound
		}
		log.Printf("[SwapService:Respond] Ошибка репозитория при поиске запроса %s: %v", requestID, err)
		return nil, errors.New("внутренняя ошибка сервера при поиске запроса")
	}

	if swap.ToUserID != actingUserID {
		log.Printf("[SwapService:Respond] Пользователь %s не получатель запроса %s", actingUserID, requestID)
		return nil, ErrForbidden
	}

	updated, err := s.swapRepo.UpdateSwapStatus(ctx, requestID, models.SwapStatusPending, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			log.Printf("[SwapService:Respond] Запрос %s уже обработан", requestID)
			return nil, ErrInvalidTransition
		case errors.Is(err, repository.ErrSwapNotFound):
			return nil, ErrSwapNotFound
		}
		log.Printf("[SwapService:Respond] Ошибка репозитория при обновлении запроса %s: %v", requestID, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении запроса")
	}

	log.Printf("[SwapService:Respond] Запрос %s переведен в статус %s", requestID, status)
	return updated, nil
}

// Summary считает запросы пользователя по статусам.
func (s *swapService) Summary(ctx context.Context, userID string) (*models.SwapSummary, error) {
	swaps, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &models.SwapSummary{Total: len(swaps)}
	for _, swap := range swaps {
		switch swap.Status {
		case models.SwapStatusPending:
			summary.Pending++
			if swap.ToUserID == userID {
				summary.IncomingPending++
			}
		case models.SwapStatusAccepted:
			summary.Accepted++
		case models.SwapStatusRejected:
			summary.Rejected++
		}
	}
	return summary, nil
}
