package mocks

import (
	"context"

	"github.com/maynagashev/skillswap/models"
	"github.com/stretchr/testify/mock"
)

// SwapRepository - мок repository.SwapRepository.
type SwapRepository struct {
	mock.Mock
}

// SwapRepository_Expecter - типизированная обертка над On.
type SwapRepository_Expecter struct { //nolint:revive // стиль expecter
	mock *mock.Mock
}

// EXPECT возвращает expecter мока.
func (_m *SwapRepository) EXPECT() *SwapRepository_Expecter {
	return &SwapRepository_Expecter{mock: &_m.Mock}
}

func swapResult(ret mock.Arguments) (*models.SwapRequest, error) {
	var swap *models.SwapRequest
	if v := ret.Get(0); v != nil {
		swap = v.(*models.SwapRequest)
	}
	return swap, ret.Error(1)
}

// CreateSwap реализует repository.SwapRepository.
func (_m *SwapRepository) CreateSwap(ctx context.Context, swap *models.SwapRequest) (*models.SwapRequest, error) {
	return swapResult(_m.Called(ctx, swap))
}

// GetSwapByID реализует repository.SwapRepository.
func (_m *SwapRepository) GetSwapByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	return swapResult(_m.Called(ctx, id))
}

// ListSwapsByUser реализует repository.SwapRepository.
func (_m *SwapRepository) ListSwapsByUser(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	ret := _m.Called(ctx, userID)
	var swaps []models.SwapRequest
	if v := ret.Get(0); v != nil {
		swaps = v.([]models.SwapRequest)
	}
	return swaps, ret.Error(1)
}

// UpdateSwapStatus реализует repository.SwapRepository.
func (_m *SwapRepository) UpdateSwapStatus(
	ctx context.Context,
	id string,
	from, to models.SwapStatus,
) (*models.SwapRequest, error) {
	return swapResult(_m.Called(ctx, id, from, to))
}

// SwapRepository_Call - ожидание вызова метода, возвращающего запрос на обмен.
type SwapRepository_Call struct { //nolint:revive // стиль expecter
	*mock.Call
}

// Return задает результат вызова.
func (_c *SwapRepository_Call) Return(swap *models.SwapRequest, err error) *SwapRepository_Call {
	_c.Call.Return(swap, err)
	return _c
}

// CreateSwap ожидает вызов CreateSwap.
func (_e *SwapRepository_Expecter) CreateSwap(ctx interface{}, swap interface{}) *SwapRepository_Call {
	return &SwapRepository_Call{Call: _e.mock.On("CreateSwap", ctx, swap)}
}

// GetSwapByID ожидает вызов GetSwapByID.
func (_e *SwapRepository_Expecter) GetSwapByID(ctx interface{}, id interface{}) *SwapRepository_Call {
	return &SwapRepository_Call{Call: _e.mock.On("GetSwapByID", ctx, id)}
}

// UpdateSwapStatus ожидает вызов UpdateSwapStatus.
func (_e *SwapRepository_Expecter) UpdateSwapStatus(
	ctx interface{},
	id interface{},
	from interface{},
	to interface{},
) *SwapRepository_Call {
	return &SwapRepository_Call{Call: _e.mock.On("UpdateSwapStatus", ctx, id, from, to)}
}

// SwapRepository_ListSwapsByUser_Call - ожидание вызова ListSwapsByUser.
type SwapRepository_ListSwapsByUser_Call struct { //nolint:revive // стиль expecter
	*mock.Call
}

// Return задает результат вызова.
func (_c *SwapRepository_ListSwapsByUser_Call) Return(
	swaps []models.SwapRequest,
	err error,
) *SwapRepository_ListSwapsByUser_Call {
	_c.Call.Return(swaps, err)
	return _c
}

// ListSwapsByUser ожидает вызов ListSwapsByUser.
func (_e *SwapRepository_Expecter) ListSwapsByUser(ctx interface{}, userID interface{}) *SwapRepository_ListSwapsByUser_Call {
	return &SwapRepository_ListSwapsByUser_Call{Call: _e.mock.On("ListSwapsByUser", ctx, userID)}
}
