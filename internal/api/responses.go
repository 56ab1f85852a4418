package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "cosmic-chat/backend/internal/errors"
	"cosmic-chat/backend/internal/model"
)

// ErrorResponse defines the standard JSON structure for error messages.
// Code is one of the model.Code* values when the failure has one.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status,omitempty"`
	ChatID string `json:"chat_id,omitempty"`
}

// StatusResponse defines a generic success response for operations that
// don't return a resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// TokenRequest carries an API key in a request body.
type TokenRequest struct {
	Token string `json:"token" validate:"required" example:"sk-..."`
}

// respondWithError maps business-layer errors to HTTP status codes and
// writes a standard JSON error body.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message, code string
	var upErr *app_errors.UpstreamError

	switch {
	case errors.Is(err, app_errors.ErrCancelled):
		// Nobody is listening any more.
		slog.Info("Request cancelled by client", "error", err)
		return
	case errors.Is(err, app_errors.ErrMissingCredential):
		statusCode = http.StatusUnauthorized
		message = app_errors.ErrMissingCredential.Error()
		code = model.CodeMissingCredential
	case errors.Is(err, app_errors.ErrInvalidCredentialFormat):
		statusCode = http.StatusBadRequest
		message = app_errors.ErrInvalidCredentialFormat.Error()
		code = model.CodeInvalidCredentialFormat
	case errors.As(err, &upErr):
		// The provider's status and message are passed through verbatim.
		statusCode = upErr.Status
		if statusCode < 400 || statusCode > 599 {
			statusCode = http.StatusBadGateway
		}
		message = upErr.Message
		code = model.CodeUpstreamRejected
	case errors.Is(err, app_errors.ErrTransport):
		statusCode = http.StatusBadGateway
		message = err.Error()
		code = model.CodeTransportError
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = err.Error()
	case errors.Is(err, app_errors.ErrPermission):
		statusCode = http.StatusForbidden
		message = "You do not have permission to perform this action."
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// respondWithJSON marshals payload and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// sendStreamError writes an `event: error` frame so SSE clients can attach
// a dedicated listener for failures.
func sendStreamError(w http.ResponseWriter, payload ErrorResponse) {
	slog.Warn("Sending stream error to client", "message", payload.Error, "code", payload.Code)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal stream error payload", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", string(jsonData)); err != nil {
		// Usually the client closed the connection.
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeStreamEvent marshals data into a `data:` frame. A returned error
// means the client has disconnected.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		// The connection is still fine; only this payload is bad.
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
