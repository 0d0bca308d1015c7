package validation

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"connectsphere/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(fields map[string]string) MapSource {
	m := map[string]Value{}
	for k, v := range fields {
		m[k] = Value{Present: true, Raw: v}
	}
	return MapSource{InBody: m}
}

func fields(errs []models.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestRegisterRules(t *testing.T) {
	testCases := []struct {
		name           string
		src            MapSource
		expectedFields []string
		expectedMsgs   []string
	}{
		{
			name:           "Валидные данные",
			src:            body(map[string]string{"name": "Alice Smith", "email": "alice@x.com", "password": "Str0ng!Pass"}),
			expectedFields: []string{},
		},
		{
			name:           "Пустое тело - все поля по порядку",
			src:            MapSource{},
			expectedFields: []string{"name", "email", "password"},
			expectedMsgs:   []string{"name field is missing", "email field is missing", "password field is missing"},
		},
		{
			name:           "Спецсимволы и короткое имя - обе ошибки",
			src:            body(map[string]string{"name": "a!", "email": "alice@x.com", "password": "Str0ng!Pass"}),
			expectedFields: []string{"name", "name"},
			expectedMsgs:   []string{msgNameChars, msgNameLength},
		},
		{
			name:           "Неверный email и слабый пароль",
			src:            body(map[string]string{"name": "Alice", "email": "alice", "password": "password"}),
			expectedFields: []string{"email", "password"},
			expectedMsgs:   []string{msgEmail, msgStrongPassword},
		},
		{
			name:           "Слишком длинный пароль",
			src:            body(map[string]string{"name": "Alice", "email": "alice@x.com", "password": "Aa1!" + strings.Repeat("x", 80)}),
			expectedFields: []string{"password"},
			expectedMsgs:   []string{msgPasswordLength},
		},
		{
			name:           "Пробелы вместо имени",
			src:            body(map[string]string{"name": "   ", "email": "alice@x.com", "password": "Str0ng!Pass"}),
			expectedFields: []string{"name"},
			expectedMsgs:   []string{"name field is missing"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := Register().Validate(tc.src)
			assert.Equal(t, tc.expectedFields, fields(errs))
			for i, msg := range tc.expectedMsgs {
				assert.Equal(t, msg, errs[i].Message)
				assert.Equal(t, "body", errs[i].Location)
			}
		})
	}
}

func TestLoginRulesSkipPasswordStrength(t *testing.T) {
	errs := Login().Validate(body(map[string]string{"email": "alice@x.com", "password": "weak"}))
	assert.Empty(t, errs)
}

func TestOptionalRules(t *testing.T) {
	rules := UpdateProfile(1024)

	assert.Empty(t, rules.Validate(MapSource{}))
	assert.Empty(t, rules.Validate(body(map[string]string{"name": ""})))

	errs := rules.Validate(body(map[string]string{"name": "ab", "bio": strings.Repeat("b", 501)}))
	assert.Equal(t, []string{"name", "bio"}, fields(errs))
}

func TestIDRules(t *testing.T) {
	valid := MapSource{InParams: {"id": {Present: true, Raw: "507f1f77bcf86cd799439011"}}}
	invalid := MapSource{InParams: {"id": {Present: true, Raw: "123"}}}

	assert.Empty(t, PostID().Validate(valid))

	errs := CommentID().Validate(invalid)
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid comment ID", errs[0].Message)
	assert.Equal(t, "params", errs[0].Location)
}

func TestPaginationRules(t *testing.T) {
	testCases := []struct {
		name     string
		page     string
		limit    string
		expected []string
	}{
		{name: "Значения по умолчанию", expected: []string{}},
		{name: "Корректные значения", page: "2", limit: "100", expected: []string{}},
		{name: "Нулевая страница", page: "0", expected: []string{"page"}},
		{name: "Лимит больше 100", limit: "101", expected: []string{"limit"}},
		{name: "Не числа", page: "x", limit: "y", expected: []string{"page", "limit"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := map[string]Value{}
			if tc.page != "" {
				q["page"] = Value{Present: true, Raw: tc.page}
			}
			if tc.limit != "" {
				q["limit"] = Value{Present: true, Raw: tc.limit}
			}
			assert.Equal(t, tc.expected, fields(Pagination().Validate(MapSource{InQuery: q})))
		})
	}
}

func TestStrongPassword(t *testing.T) {
	check := StrongPassword()
	assert.True(t, check(Value{Raw: "Str0ng!Pass"}))
	assert.False(t, check(Value{Raw: "Sh0!t"}))
	assert.False(t, check(Value{Raw: "nouppercase1!"}))
	assert.False(t, check(Value{Raw: "NOLOWERCASE1!"}))
	assert.False(t, check(Value{Raw: "NoDigits!!"}))
	assert.False(t, check(Value{Raw: "NoSymbol123"}))
}

func TestErrReturnsValidationFailed(t *testing.T) {
	appErr := Register().Err(MapSource{})
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrCodeValidation, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Len(t, appErr.Details, 3)

	assert.Nil(t, Login().Err(body(map[string]string{"email": "a@b.co", "password": "x"})))
}

func TestFromGinJSONBodyIsReusable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Alice Smith","email":"alice@x.com","password":"Str0ng!Pass","extra":1}`))
	c.Request.Header.Set("Content-Type", "application/json")

	assert.Empty(t, Register().Validate(FromGin(c)))

	// Тело доступно обработчику после валидации
	var req models.RegisterRequest
	require.NoError(t, c.ShouldBindBodyWith(&req, binding.JSON))
	assert.Equal(t, "alice@x.com", req.Email)
}

func TestFromGinMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("content", "hello world"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image/video"; filename="a.txt"`)
	h.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("not media"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/posts", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	errs := CreatePost(1024).Validate(FromGin(c))
	require.Len(t, errs, 1)
	assert.Equal(t, MediaField, errs[0].Field)
	assert.Equal(t, msgMediaType, errs[0].Message)
}

func TestFromGinMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"content":"hello"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	errs := CreatePost(1024).Validate(FromGin(c))
	assert.Equal(t, []string{MediaField}, fields(errs))
	assert.Equal(t, msgMediaRequired, errs[0].Message)
}

func TestFromGinRejectsNonStringValues(t *testing.T) {
	testCases := []struct {
		name           string
		rules          Rules
		body           string
		expectedFields []string
		expectedMsgs   []string
	}{
		{
			name:           "Имя числом",
			rules:          Register(),
			body:           `{"name":12345,"email":"alice@x.com","password":"Str0ng!Pass"}`,
			expectedFields: []string{"name"},
			expectedMsgs:   []string{"name must be a string"},
		},
		{
			name:           "Пароль числом при входе",
			rules:          Login(),
			body:           `{"email":"alice@x.com","password":12345678}`,
			expectedFields: []string{"password"},
			expectedMsgs:   []string{"password must be a string"},
		},
		{
			name:           "Массив и объект",
			rules:          Register(),
			body:           `{"name":["Alice"],"email":{"v":"alice@x.com"},"password":"Str0ng!Pass"}`,
			expectedFields: []string{"name", "email"},
			expectedMsgs:   []string{"name must be a string", "email must be a string"},
		},
		{
			name:           "null считается отсутствием",
			rules:          Login(),
			body:           `{"email":"alice@x.com","password":null}`,
			expectedFields: []string{"password"},
			expectedMsgs:   []string{"password field is missing"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(tc.body))
			c.Request.Header.Set("Content-Type", "application/json")

			errs := tc.rules.Validate(FromGin(c))
			require.Equal(t, tc.expectedFields, fields(errs))
			for i, msg := range tc.expectedMsgs {
				assert.Equal(t, msg, errs[i].Message)
			}
		})
	}
}

func TestTrimmedLengthRules(t *testing.T) {
	postID := map[string]Value{"id": {Present: true, Raw: "507f1f77bcf86cd799439011"}}

	testCases := []struct {
		name           string
		rules          Rules
		src            MapSource
		expectedFields []string
	}{
		{
			name:           "Контент из одной буквы в пробелах",
			rules:          UpdatePost(1024),
			src:            MapSource{InParams: postID, InBody: {"content": {Present: true, Raw: "  a  "}}},
			expectedFields: []string{"content"},
		},
		{
			name:           "Контент в пробелах нужной длины",
			rules:          UpdatePost(1024),
			src:            MapSource{InParams: postID, InBody: {"content": {Present: true, Raw: "  abc  "}}},
			expectedFields: []string{},
		},
		{
			name:           "Короткое имя профиля в пробелах",
			rules:          UpdateProfile(1024),
			src:            body(map[string]string{"name": "   ab   "}),
			expectedFields: []string{"name"},
		},
		{
			name:           "Короткое имя при регистрации в пробелах",
			rules:          Register(),
			src:            body(map[string]string{"name": " ab ", "email": "alice@x.com", "password": "Str0ng!Pass"}),
			expectedFields: []string{"name"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedFields, fields(tc.rules.Validate(tc.src)))
		})
	}
}
