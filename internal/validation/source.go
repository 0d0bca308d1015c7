package validation

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ginSource struct {
	c      *gin.Context
	body   map[string]any
	loaded bool
}

// FromGin читает значения из запроса gin. JSON-тело кешируется в контексте,
// поэтому обработчик может повторно связать его через ShouldBindBodyWith
func FromGin(c *gin.Context) Source {
	return &ginSource{c: c}
}

func (s *ginSource) Lookup(in Location, field string) Value {
	switch in {
	case InBody:
		return s.lookupBody(field)
	case InParams:
		raw := s.c.Param(field)
		return Value{Present: raw != "", Raw: raw}
	case InQuery:
		raw, ok := s.c.GetQuery(field)
		return Value{Present: ok, Raw: raw}
	case InHeader:
		raw := s.c.GetHeader(field)
		return Value{Present: raw != "", Raw: raw}
	case InFile:
		if !s.isMultipart() {
			return Value{}
		}
		fh, err := s.c.FormFile(field)
		if err != nil {
			return Value{}
		}
		return Value{Present: true, File: fh}
	}
	return Value{}
}

func (s *ginSource) isMultipart() bool {
	return s.c.ContentType() == binding.MIMEMultipartPOSTForm
}

func (s *ginSource) lookupBody(field string) Value {
	if s.isMultipart() {
		raw, ok := s.c.GetPostForm(field)
		return Value{Present: ok, Raw: raw}
	}

	if !s.loaded {
		s.loaded = true
		// Пустое или битое тело - все поля считаются отсутствующими
		_ = s.c.ShouldBindBodyWith(&s.body, binding.JSON)
	}

	raw, ok := s.body[field]
	if !ok || raw == nil {
		return Value{}
	}
	if str, ok := raw.(string); ok {
		return Value{Present: true, Raw: str}
	}
	return Value{Present: true, Raw: fmt.Sprint(raw), NotString: true}
}

// MapSource - источник значений для тестов и непрямых вызовов
type MapSource map[Location]map[string]Value

// Lookup возвращает значение поля
func (m MapSource) Lookup(in Location, field string) Value {
	return m[in][field]
}
