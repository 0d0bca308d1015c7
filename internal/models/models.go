package models

import "math"

// Значения пагинации по умолчанию
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage держит Offset в пределах int32 * MaxLimit
	MaxPage = math.MaxInt32
)

// Page - параметры постраничной выборки
type Page struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// NewPage нормализует параметры, подставляя значения по умолчанию
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset возвращает количество пропускаемых записей
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PaginationMeta содержит сведения о странице для списков
type PaginationMeta struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
}

// NewPaginationMeta считает метаданные страницы
func NewPaginationMeta(p Page, total int64) *PaginationMeta {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return &PaginationMeta{
		Page:         p.Page,
		Limit:        p.Limit,
		TotalRecords: total,
		TotalPages:   pages,
	}
}
