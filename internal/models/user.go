package models

import "time"

// Аватар по умолчанию для новых пользователей
const (
	DefaultProfilePicName = "default_icon.png"
	DefaultProfilePicURL  = "https://img.icons8.com/?size=100&id=tZuAOUGm9AuS&format=png&color=000000"
)

// ProfilePic - ссылка на аватар в объектном хранилище
type ProfilePic struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// DefaultProfilePic возвращает аватар по умолчанию
func DefaultProfilePic() ProfilePic {
	return ProfilePic{FileName: DefaultProfilePicName, URL: DefaultProfilePicURL}
}

// IsDefault сообщает, что аватар не загружался пользователем
func (p ProfilePic) IsDefault() bool {
	return p.FileName == "" || p.FileName == DefaultProfilePicName
}

// User представляет пользователя в системе
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	ProfilePic   ProfilePic
	Bio          string
	IsBlocked    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller строит контекст вызывающего из записи пользователя
func (u *User) Caller() *Caller {
	return &Caller{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsBlocked: u.IsBlocked,
	}
}

// UserFilter ограничивает подсчет пользователей
type UserFilter struct {
	Blocked *bool
}

// ProfileUpdate - изменяемые поля профиля; nil означает "не менять"
type ProfileUpdate struct {
	Name       *string
	Bio        *string
	ProfilePic *ProfilePic
}

// UpdateProfileRequest представляет текстовые поля запроса на обновление профиля
type UpdateProfileRequest struct {
	Name string `json:"name" form:"name"`
	Bio  string `json:"bio" form:"bio"`
}

// UserResponse представляет пользователя в ответах API
type UserResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	ProfilePic ProfilePic `json:"profile_pic"`
	IsBlocked  *bool      `json:"isBlocked,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// NewUserResponse собирает публичное представление пользователя без хеша пароля
func NewUserResponse(u *User) UserResponse {
	createdAt := u.CreatedAt
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		CreatedAt:  &createdAt,
	}
}

// WithBlocked добавляет в ответ признак блокировки (для администратора)
func (r UserResponse) WithBlocked(blocked bool) UserResponse {
	r.IsBlocked = &blocked
	return r
}

// BlockStatusResponse представляет ответ на блокировку и разблокировку
type BlockStatusResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsBlocked bool   `json:"isBlocked"`
}

// UserListResponse представляет страницу пользователей
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// Analytics - сводные показатели для администратора
type Analytics struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalPosts    int64 `json:"totalPosts"`
	TotalComments int64 `json:"totalComments"`
	BlockedUsers  int64 `json:"blockedUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
}

// AnalyticsResponse представляет ответ со сводными показателями
type AnalyticsResponse struct {
	Analytics Analytics `json:"analytics"`
}
