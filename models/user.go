package models

import "time"

// User представляет профиль участника обмена навыками.
// Хеш пароля никогда не сериализуется в JSON.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"` // Пустой email скрывается в публичной выдаче
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	SkillsOffered  []string  `json:"skillsOffered"`
	SkillsWanted   []string  `json:"skillsWanted"`
	Availability   []string  `json:"availability"`
	IsPublic       bool      `json:"isPublic"`
	Rating         *float64  `json:"rating,omitempty"`
	JoinedAt       time.Time `json:"joinedAt"`
}

// Public возвращает копию пользователя без email для публичного каталога.
func (u User) Public() User {
	u.Email = ""
	u.PasswordHash = ""
	return u
}

// Normalize заменяет nil-срезы пустыми, чтобы в JSON всегда были массивы.
func (u *User) Normalize() {
	if u.SkillsOffered == nil {
		u.SkillsOffered = []string{}
	}
	if u.SkillsWanted == nil {
		u.SkillsWanted = []string{}
	}
	if u.Availability == nil {
		u.Availability = []string{}
	}
}

// SignupRequest представляет тело запроса на регистрацию.
// IsPublic - указатель, так как отсутствие поля означает true.
type SignupRequest struct {
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Name          string   `json:"name"`
	Location      string   `json:"location,omitempty"`
	SkillsOffered []string `json:"skillsOffered,omitempty"`
	SkillsWanted  []string `json:"skillsWanted,omitempty"`
	Availability  []string `json:"availability,omitempty"`
	IsPublic      *bool    `json:"isPublic,omitempty"`
}

// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfilePatch - частичное обновление профиля.
// Заполненные (не nil) поля заменяют текущие значения. Полей id, email,
// пароля и даты регистрации здесь нет: изменить их через профиль нельзя.
type ProfilePatch struct {
	Name           *string   `json:"name,omitempty"`
	Location       *string   `json:"location,omitempty"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	SkillsOffered  *[]string `json:"skillsOffered,omitempty"`
	SkillsWanted   *[]string `json:"skillsWanted,omitempty"`
	Availability   *[]string `json:"availability,omitempty"`
	IsPublic       *bool     `json:"isPublic,omitempty"`
	Rating         *float64  `json:"rating,omitempty"`
}

// Apply накладывает патч на пользователя (поверхностное слияние).
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	if p.SkillsOffered != nil {
		u.SkillsOffered = append([]string{}, (*p.SkillsOffered)...)
	}
	if p.SkillsWanted != nil {
		u.SkillsWanted = append([]string{}, (*p.SkillsWanted)...)
	}
	if p.Availability != nil {
		u.Availability = append([]string{}, (*p.Availability)...)
	}
	if p.IsPublic != nil {
		u.IsPublic = *p.IsPublic
	}
	if p.Rating != nil {
		r := *p.Rating
		u.Rating = &r
	}
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse - тело ответа с информационным сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}
