package models

import "time"

// SwapStatus - статус запроса на обмен.
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusAccepted SwapStatus = "accepted"
	SwapStatusRejected SwapStatus = "rejected"
)

// IsResponse сообщает, может ли статус быть ответом получателя.
func (s SwapStatus) IsResponse() bool {
	return s == SwapStatusAccepted || s == SwapStatusRejected
}

// SwapRequest представляет предложение обменять навык отправителя на навык получателя.
type SwapRequest struct {
	ID           string     `json:"id"`
	FromUserID   string     `json:"fromUserId"`
	ToUserID     string     `json:"toUserId"`
	FromUserName string     `json:"fromUserName"`
	ToUserName   string     `json:"toUserName"`
	SkillOffered string     `json:"skillOffered"`
	SkillWanted  string     `json:"skillWanted"`
	Message      string     `json:"message"`
	Status       SwapStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// SendSwapRequest - тело запроса на отправку предложения.
// Статус из запроса игнорируется: новое предложение всегда pending.
type SendSwapRequest struct {
	FromUserID   string `json:"fromUserId"`
	ToUserID     string `json:"toUserId"`
	FromUserName string `json:"fromUserName,omitempty"`
	ToUserName   string `json:"toUserName,omitempty"`
	SkillOffered string `json:"skillOffered"`
	SkillWanted  string `json:"skillWanted"`
	Message      string `json:"message,omitempty"`
}

// RespondSwapRequest - тело запроса на ответ получателя.
type RespondSwapRequest struct {
	RequestID string     `json:"requestId"`
	Status    SwapStatus `json:"status"`
}

// SwapSummary - сводка по предложениям пользователя для дашборда.
type SwapSummary struct {
	Total           int `json:"total"`
	Pending         int `json:"pending"`
	Accepted        int `json:"accepted"`
	Rejected        int `json:"rejected"`
	IncomingPending int `json:"incomingPending"` // Ожидают ответа от самого пользователя
}
