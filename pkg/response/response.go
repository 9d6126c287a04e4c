package response

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"policyscraper/internal/log"
)

type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code,omitempty"`
	Error      string      `json:"error,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// JSON writes the standard envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	Raw(w, statusCode, Response{
		Status:     http.StatusText(statusCode),
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// Raw writes v as indented JSON without the envelope. Report documents use
// it so their field names stay stable for consumers.
func Raw(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// Text writes a plain document such as a markdown report.
func Text(w http.ResponseWriter, statusCode int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Logger.Error("failed to write response", zap.Error(err))
	}
}

func Success(w http.ResponseWriter, data interface{}, message string) {
	JSON(w, http.StatusOK, data, message)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, nil, message)
}

// ErrorCode writes an error envelope carrying a machine-readable code and
// optional details.
func ErrorCode(w http.ResponseWriter, statusCode int, code, message string, data interface{}) {
	Raw(w, statusCode, Response{
		Status:     http.StatusText(statusCode),
		StatusCode: statusCode,
		Error:      code,
		Message:    message,
		Data:       data,
	})
}
