// Package mocks содержит testify-моки репозиториев для тестов сервисов.
package mocks

import (
	"context"

	"github.com/maynagashev/skillswap/models"
	"github.com/stretchr/testify/mock"
)

// UserRepository - мок repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

// UserRepository_Expecter - типизированная обертка над On.
type UserRepository_Expecter struct { //nolint:revive // стиль expecter
	mock *mock.Mock
}

// EXPECT возвращает expecter мока.
func (_m *UserRepository) EXPECT() *UserRepository_Expecter {
	return &UserRepository_Expecter{mock: &_m.Mock}
}

func userResult(ret mock.Arguments) (*models.User, error) {
	var user *models.User
	if v := ret.Get(0); v != nil {
		user = v.(*models.User)
	}
	return user, ret.Error(1)
}

// CreateUser реализует repository.UserRepository.
func (_m *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return userResult(_m.Called(ctx, user))
}

// GetUserByID реализует repository.UserRepository.
func (_m *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return userResult(_m.Called(ctx, id))
}

// GetUserByEmail реализует repository.UserRepository.
func (_m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return userResult(_m.Called(ctx, email))
}

// UpdateProfile реализует repository.UserRepository.
func (_m *UserRepository) UpdateProfile(
	ctx context.Context,
	id string,
	patch models.ProfilePatch,
) (*models.User, error) {
	return userResult(_m.Called(ctx, id, patch))
}

// ListPublicUsers реализует repository.UserRepository.
func (_m *UserRepository) ListPublicUsers(ctx context.Context) ([]models.User, error) {
	ret := _m.Called(ctx)
	var users []models.User
	if v := ret.Get(0); v != nil {
		users = v.([]models.User)
	}
	return users, ret.Error(1)
}

// UserRepository_Call - ожидание вызова метода, возвращающего пользователя.
type UserRepository_Call struct { //nolint:revive // стиль expecter
	*mock.Call
}

// Return задает результат вызова.
func (_c *UserRepository_Call) Return(user *models.User, err error) *UserRepository_Call {
	_c.Call.Return(user, err)
	return _c
}

// CreateUser ожидает вызов CreateUser.
func (_e *UserRepository_Expecter) CreateUser(ctx interface{}, user interface{}) *UserRepository_Call {
	return &UserRepository_Call{Call: _e.mock.On("CreateUser", ctx, user)}
}

// GetUserByID ожидает вызов GetUserByID.
func (_e *UserRepository_Expecter) GetUserByID(ctx interface{}, id interface{}) *UserRepository_Call {
	return &UserRepository_Call{Call: _e.mock.On("GetUserByID", ctx, id)}
}

// GetUserByEmail ожидает вызов GetUserByEmail.
func (_e *UserRepository_Expecter) GetUserByEmail(ctx interface{}, email interface{}) *UserRepository_Call {
	return &UserRepository_Call{Call: _e.mock.On("GetUserByEmail", ctx, email)}
}

// UpdateProfile ожидает вызов UpdateProfile.
func (_e *UserRepository_Expecter) UpdateProfile(
	ctx interface{},
	id interface{},
	patch interface{},
) *UserRepository_Call {
	return &UserRepository_Call{Call: _e.mock.On("UpdateProfile", ctx, id, patch)}
}

// UserRepository_ListPublicUsers_Call - ожидание вызова ListPublicUsers.
type UserRepository_ListPublicUsers_Call struct { //nolint:revive // стиль expecter
	*mock.Call
}

// Return задает результат вызова.
func (_c *UserRepository_ListPublicUsers_Call) Return(
	users []models.User,
	err error,
) *UserRepository_ListPublicUsers_Call {
	_c.Call.Return(users, err)
	return _c
}

// ListPublicUsers ожидает вызов ListPublicUsers.
func (_e *UserRepository_Expecter) ListPublicUsers(ctx interface{}) *UserRepository_ListPublicUsers_Call {
	return &UserRepository_ListPublicUsers_Call{Call: _e.mock.On("ListPublicUsers", ctx)}
}
