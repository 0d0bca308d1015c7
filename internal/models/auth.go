package models

import "fmt"

// Role - роль пользователя; набор значений закрыт
type Role string

// Роли пользователей
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Roles перечисляет все допустимые роли
var Roles = []Role{RoleAdmin, RoleUser}

// Valid сообщает, входит ли значение в набор ролей
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// ParseRole превращает строку из хранилища в Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Caller - данные вызывающего, восстановленные по токену на время одного запроса
type Caller struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	IsBlocked bool
}

// IsAdmin сообщает, является ли вызывающий администратором
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// RegisterRequest представляет запрос на регистрацию пользователя
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет ответ на регистрацию и вход
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// ProfileResponse представляет ответ с профилем текущего пользователя
type ProfileResponse struct {
	User UserResponse `json:"user"`
}
