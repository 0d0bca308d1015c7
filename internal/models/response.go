package models

// SuccessResponse - конверт успешного ответа
type SuccessResponse struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       any             `json:"data,omitempty"`
	Meta       *PaginationMeta `json:"meta,omitempty"`
}

// ErrorResponse - конверт ответа с ошибкой
type ErrorResponse struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Error      ErrorBody `json:"error"`
}

// ErrorBody содержит код ошибки и, при наличии, подробности
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Details any       `json:"details,omitempty"`
}

// FieldError - одно нарушенное правило валидации
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}
