package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aoperat/centumbob/internal/common"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Success: status < 400, Data: data}); err != nil {
		logger.Error("http.response.encode_failed", "error", err)
	}
}

func ok(w http.ResponseWriter, data any, logger *slog.Logger) {
	writeJSON(w, http.StatusOK, data, logger)
}

func created(w http.ResponseWriter, data any, logger *slog.Logger) {
	writeJSON(w, http.StatusCreated, data, logger)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	env := Envelope{Success: false, Error: message, Code: code, Details: details}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("http.response.encode_failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	writeError(w, http.StatusBadRequest, "INVALID_INPUT", message, nil, logger)
}

// handleError maps err to a status with common.HTTPStatus. Server side failures are logged
// and their detail is withheld from the client.
func handleError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := common.HTTPStatus(err)
	writeStatusError(w, r, status, err, logger)
}

func writeStatusError(w http.ResponseWriter, r *http.Request, status int, err error, logger *slog.Logger) {
	log := common.LoggerFromContext(r.Context(), logger)

	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", verr.Fields, log)
		return
	}

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("http.request.failed", "path", r.URL.Path, "status", status, "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}
	writeError(w, status, statusCode(status, err), msg, nil, log)
}

func statusCode(status int, err error) string {
	switch status {
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case http.StatusBadGateway:
		return "UPSTREAM_FAILED"
	case http.StatusGatewayTimeout:
		return "UPSTREAM_TIMEOUT"
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	return common.ErrorCode(err)
}
