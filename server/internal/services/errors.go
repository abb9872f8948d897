package services

import "errors"

// Кастомные ошибки сервисов. Обработчики сопоставляют их со статусами HTTP.
var (
	ErrValidation         = errors.New("не заполнены обязательные поля")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrEmailTaken         = errors.New("email уже занят")
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrForbidden          = errors.New("действие запрещено для этого пользователя")
	ErrSwapNotFound       = errors.New("запрос на обмен не найден")
	ErrSelfSwap           = errors.New("нельзя отправить запрос самому себе")
	ErrInvalidStatus      = errors.New("недопустимый статус ответа")
	ErrInvalidTransition  = errors.New("запрос на обмен уже обработан")
	ErrAvatarNotFound     = errors.New("аватар не найден")
)
