package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// GenericErrorMessage is shown for any unexpected failure; details stay in the logs.
const GenericErrorMessage = "Erro ao processar. Tente novamente."

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Field     string      `json:"field,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, SuccessResponse(message, data))
}

func WriteError(w http.ResponseWriter, status int, message, errCode string) {
	WriteJSON(w, status, ErrorResponse(message, errCode))
}

// WriteFieldError reports a validation failure tied to one form field.
func WriteFieldError(w http.ResponseWriter, field, message string) {
	resp := ErrorResponse(message, "validation_error")
	resp.Field = field
	WriteJSON(w, http.StatusBadRequest, resp)
}
