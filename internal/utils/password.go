package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost - рабочий фактор по умолчанию
const DefaultBcryptCost = 12

// PasswordHasherInterface определяет методы для работы с паролями
type PasswordHasherInterface interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hashedPassword string) bool
}

// PasswordHasher хеширует и проверяет пароли с помощью bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создает хешер; некорректный cost заменяется значением по умолчанию
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost возвращает рабочий фактор
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// HashPassword создает хеш пароля с использованием bcrypt
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPassword сравнивает пароль с хешем. Битый хеш - просто несовпадение
func (h *PasswordHasher) CheckPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
