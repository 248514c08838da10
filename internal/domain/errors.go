package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnauthenticated пользователь не аутентифицирован
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")

	// ErrUnsupportedRegion регион не поддерживается
	ErrUnsupportedRegion = errors.New("unsupported region")

	// ErrMethodNotAvailable метод оплаты недоступен в регионе
	ErrMethodNotAvailable = errors.New("payment method not available in region")

	// ErrProviderNotEnabled провайдер не включен для региона
	ErrProviderNotEnabled = errors.New("payment provider not enabled for region")

	// ErrUnsupportedProvider неподдерживаемый платежный провайдер
	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	// ErrProviderNotConfigured у провайдера отсутствуют учетные данные
	ErrProviderNotConfigured = errors.New("payment provider not configured")

	// ErrPaymentGateway ошибка на стороне платежного шлюза
	ErrPaymentGateway = errors.New("payment gateway error")

	// ErrRateLimited превышен лимит запросов
	ErrRateLimited = errors.New("rate limit exceeded")
)

// APIError представляет ошибку с HTTP статусом и машиночитаемым кодом
type APIError struct {
	Code        string
	Message     string
	StatusCode  int
	OriginalErr error
}

// Error реализует интерфейс error
func (e *APIError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает оригинальную ошибку
func (e *APIError) Unwrap() error {
	return e.OriginalErr
}

// NewValidationError создает ошибку валидации (400)
func NewValidationError(code, message string, err error) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		StatusCode:  http.StatusBadRequest,
		OriginalErr: err,
	}
}

// NewAuthError создает ошибку аутентификации (401)
func NewAuthError(message string) *APIError {
	return &APIError{
		Code:        "unauthorized",
		Message:     message,
		StatusCode:  http.StatusUnauthorized,
		OriginalErr: ErrUnauthenticated,
	}
}

// NewGatewayError создает ошибку платежного шлюза (502)
func NewGatewayError(provider, message string, err error) *APIError {
	return &APIError{
		Code:        "gateway_error",
		Message:     fmt.Sprintf("%s: %s", provider, message),
		StatusCode:  http.StatusBadGateway,
		OriginalErr: err,
	}
}

// NewInternalError создает внутреннюю ошибку (500)
func NewInternalError(message string, err error) *APIError {
	return &APIError{
		Code:        "internal_error",
		Message:     message,
		StatusCode:  http.StatusInternalServerError,
		OriginalErr: err,
	}
}

// NewRateLimitError создает ошибку превышения лимита (429)
func NewRateLimitError(message string) *APIError {
	return &APIError{
		Code:        "rate_limited",
		Message:     message,
		StatusCode:  http.StatusTooManyRequests,
		OriginalErr: ErrRateLimited,
	}
}

// StatusCodeOf возвращает HTTP статус для ошибки
func StatusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedRegion),
		errors.Is(err, ErrMethodNotAvailable),
		errors.Is(err, ErrProviderNotEnabled),
		errors.Is(err, ErrUnsupportedProvider):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrPaymentGateway):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// MessageOf возвращает сообщение ошибки, пригодное для клиента
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// CodeOf возвращает машиночитаемый код для ошибки
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupportedRegion):
		return "unsupported_region"
	case errors.Is(err, ErrMethodNotAvailable):
		return "method_not_available"
	case errors.Is(err, ErrProviderNotEnabled):
		return "provider_not_enabled"
	case errors.Is(err, ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.Is(err, ErrProviderNotConfigured):
		return "provider_not_configured"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrPaymentGateway):
		return "gateway_error"
	}
	return "internal_error"
}
