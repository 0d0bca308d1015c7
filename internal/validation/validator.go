// Package validation описывает правила проверки входных данных маршрутов
// и собирает все нарушения за один проход.
package validation

import (
	"mime/multipart"
	"strings"

	"connectsphere/internal/models"
)

// Location - часть запроса, из которой берется значение
type Location string

// Части запроса
const (
	InBody   Location = "body"
	InParams Location = "params"
	InQuery  Location = "query"
	InHeader Location = "headers"
	InFile   Location = "file"
)

// Value - значение поля, извлеченное из запроса
type Value struct {
	Present bool
	Raw     string
	File    *multipart.FileHeader
	// Значение в JSON-теле не строка
	NotString bool
}

// Source отдает значения полей запроса
type Source interface {
	Lookup(in Location, field string) Value
}

// Check - предикат над значением с сообщением об ошибке
type Check struct {
	Message string
	Test    func(v Value) bool
}

// Rule - набор проверок одного поля
type Rule struct {
	Field    string
	In       Location
	Optional bool
	Missing  string
	Trim     bool
	Checks   []Check
}

// Rules - правила маршрута в порядке объявления
type Rules []Rule

// Body создает правило для поля тела запроса
func Body(field string) Rule { return Rule{Field: field, In: InBody} }

// Param создает правило для параметра пути
func Param(field string) Rule { return Rule{Field: field, In: InParams} }

// Query создает правило для параметра строки запроса
func Query(field string) Rule { return Rule{Field: field, In: InQuery} }

// Header создает правило для заголовка
func Header(field string) Rule { return Rule{Field: field, In: InHeader} }

// File создает правило для загружаемого файла
func File(field string) Rule { return Rule{Field: field, In: InFile} }

// Required помечает поле обязательным
func (r Rule) Required(message string) Rule {
	r.Optional = false
	r.Missing = message
	return r
}

// Opt пропускает проверки, если поля нет
func (r Rule) Opt() Rule {
	r.Optional = true
	return r
}

// Trimmed обрезает пробелы перед проверками
func (r Rule) Trimmed() Rule {
	r.Trim = true
	return r
}

// Check добавляет проверку
func (r Rule) Check(test func(v Value) bool, message string) Rule {
	checks := make([]Check, len(r.Checks), len(r.Checks)+1)
	copy(checks, r.Checks)
	r.Checks = append(checks, Check{Message: message, Test: test})
	return r
}

func (r Rule) missing() string {
	if r.Missing != "" {
		return r.Missing
	}
	return r.Field + " field is missing"
}

// Validate проверяет все правила и возвращает все нарушения по порядку.
// Отсутствие обязательного поля отменяет остальные проверки только этого поля
func (rs Rules) Validate(src Source) []models.FieldError {
	var errs []models.FieldError

	for _, rule := range rs {
		v := src.Lookup(rule.In, rule.Field)
		if rule.Trim {
			v.Raw = strings.TrimSpace(v.Raw)
		}
		if !isPresent(rule.In, v) {
			if !rule.Optional {
				errs = append(errs, fieldError(rule, rule.missing()))
			}
			continue
		}
		if v.NotString {
			errs = append(errs, fieldError(rule, rule.Field+" must be a string"))
			continue
		}
		for _, check := range rule.Checks {
			if !check.Test(v) {
				errs = append(errs, fieldError(rule, check.Message))
			}
		}
	}

	return errs
}

// Err возвращает ошибку VALIDATION_ERROR или nil
func (rs Rules) Err(src Source) *models.AppError {
	if errs := rs.Validate(src); len(errs) > 0 {
		return models.ValidationFailed(errs)
	}
	return nil
}

func isPresent(in Location, v Value) bool {
	if !v.Present {
		return false
	}
	if in == InFile {
		return v.File != nil
	}
	return strings.TrimSpace(v.Raw) != ""
}

func fieldError(rule Rule, message string) models.FieldError {
	return models.FieldError{
		Field:    rule.Field,
		Message:  message,
		Location: string(rule.In),
	}
}
