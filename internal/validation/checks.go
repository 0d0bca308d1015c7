package validation

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func tag(name string) func(v Value) bool {
	return func(v Value) bool {
		return validate.Var(v.Raw, name) == nil
	}
}

// Email проверяет формат адреса
func Email() func(v Value) bool { return tag("email") }

// ObjectID проверяет формат идентификатора (24 hex-символа)
func ObjectID() func(v Value) bool { return tag("mongodb") }

// AlphanumSpaces разрешает латиницу, цифры и пробелы
func AlphanumSpaces() func(v Value) bool {
	return func(v Value) bool {
		stripped := strings.ReplaceAll(v.Raw, " ", "")
		return validate.Var(stripped, "alphanum") == nil
	}
}

// Length проверяет длину в символах; max <= 0 - без верхней границы
func Length(min, max int) func(v Value) bool {
	return func(v Value) bool {
		n := utf8.RuneCountInString(v.Raw)
		if n < min {
			return false
		}
		return max <= 0 || n <= max
	}
}

// MaxBytes ограничивает длину в байтах
func MaxBytes(max int) func(v Value) bool {
	return func(v Value) bool {
		return len(v.Raw) <= max
	}
}

// IntRange проверяет, что значение - целое число в диапазоне; max <= 0 - без верхней границы
func IntRange(min, max int) func(v Value) bool {
	return func(v Value) bool {
		n, err := strconv.Atoi(strings.TrimSpace(v.Raw))
		if err != nil || n < min {
			return false
		}
		return max <= 0 || n <= max
	}
}

// StrongPassword требует не меньше 8 символов, строчную и заглавную букву, цифру и символ
func StrongPassword() func(v Value) bool {
	return func(v Value) bool {
		if utf8.RuneCountInString(v.Raw) < 8 {
			return false
		}
		var lower, upper, digit, symbol bool
		for _, r := range v.Raw {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r), unicode.IsSymbol(r), r == ' ':
				symbol = true
			}
		}
		return lower && upper && digit && symbol
	}
}

// BearerPrefix проверяет схему Bearer в заголовке
func BearerPrefix() func(v Value) bool {
	return func(v Value) bool {
		return strings.HasPrefix(v.Raw, "Bearer ")
	}
}

// MediaType разрешает файлы с указанными префиксами MIME-типа
func MediaType(prefixes ...string) func(v Value) bool {
	return func(v Value) bool {
		if v.File == nil {
			return false
		}
		ct := strings.ToLower(v.File.Header.Get("Content-Type"))
		for _, p := range prefixes {
			if strings.HasPrefix(ct, p) {
				return true
			}
		}
		return false
	}
}

// MaxFileSize ограничивает размер файла
func MaxFileSize(max int64) func(v Value) bool {
	return func(v Value) bool {
		return v.File != nil && v.File.Size <= max
	}
}
