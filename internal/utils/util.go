package utils

import (
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var (
	rndMu sync.Mutex
	rnd   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomString генерирует случайную строку заданной длины
func RandomString(n int) string {
	rndMu.Lock()
	defer rndMu.Unlock()

	var sb strings.Builder
	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[rnd.Intn(k)]
		sb.WriteByte(c)
	}

	return sb.String()
}

// RandomEmail генерирует случайный email для тестов
func RandomEmail() string {
	return RandomString(8) + "@example.com"
}

// SanitizeFileName оставляет от имени файла только безопасные символы
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	if s := strings.Trim(sb.String(), "."); s != "" {
		return s
	}
	return "file"
}

// NormalizeEmail приводит email к каноническому виду
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
