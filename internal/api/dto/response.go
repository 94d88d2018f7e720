package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/validator"
)

// Error codes for consistent API responses
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnprocessable  = "UNPROCESSABLE_ENTITY"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
	ErrCodeTooManyRequest = "TOO_MANY_REQUESTS"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *ErrorData  `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type ErrorData struct {
	Code    string                      `json:"code"`
	Message string                      `json:"message"`
	Details []validator.ValidationError `json:"details,omitempty"`
}

type Meta struct {
	Total int `json:"total"`
}

// getRequestID extracts request ID from response header if set
func getRequestID(w http.ResponseWriter) string {
	return w.Header().Get("X-Request-ID")
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   status >= 200 && status < 300,
		Data:      data,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
	}

	_ = json.NewEncoder(w).Encode(response)
}

func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Meta:      meta,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
	}

	_ = json.NewEncoder(w).Encode(response)
}

func errorWithCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success:   false,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
		Error: &ErrorData{
			Code:    code,
			Message: message,
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

func ValidationErrorResponse(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	response := Response{
		Success:   false,
		RequestID: getRequestID(w),
		Timestamp: time.Now().Unix(),
		Error: &ErrorData{
			Code:    ErrCodeValidation,
			Message: "Validation failed",
			Details: validator.FormatErrors(err),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// Convenience helpers

func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func BadRequest(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func NotFound(w http.ResponseWriter, resource string) {
	errorWithCode(w, http.StatusNotFound, ErrCodeNotFound, resource+" not found")
}

func Conflict(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusConflict, ErrCodeConflict, message)
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusUnprocessableEntity, ErrCodeUnprocessable, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusTooManyRequests, ErrCodeTooManyRequest, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	errorWithCode(w, http.StatusInternalServerError, ErrCodeInternalServer, message)
}

// HandleServiceError maps service-layer errors to appropriate HTTP responses
func HandleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		errorWithCode(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		Conflict(w, err.Error())
	case errors.Is(err, services.ErrMalformed):
		UnprocessableEntity(w, err.Error())
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
