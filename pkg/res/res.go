package res

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse представляет формат JSON-ответа для ошибок.
type ErrorResponse struct {
	Error     string `json:"error"`              // Сообщение об ошибке (для пользователя)
	Code      string `json:"code,omitempty"`     // Машиночитаемый код ошибки
	Details   any    `json:"details,omitempty"`  // Детали ошибки (например, ошибки валидации)
	ErrorCode int    `json:"error_code,omitempty"`
}

// JsonResponse отправляет JSON-ответ с заданным статусом.
func JsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
