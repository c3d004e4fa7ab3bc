package httpapi

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// statusFor maps the error taxonomy onto HTTP. Only authorization and input
// problems are the caller's fault.
func statusFor(err error) int {
	switch {
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case apperrors.IsUnauthenticated(err):
		return http.StatusUnauthorized
	case apperrors.IsNotAuthorized(err):
		return http.StatusForbidden
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := apperrors.GetCode(err)
	message := apperrors.GetMessage(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "status", status, "error", err)
		if status == http.StatusInternalServerError {
			code, message = "internal", "internal error"
		} else if code == "" {
			code = "unavailable"
		}
	}
	if code == "" {
		code = http.StatusText(status)
	}

	s.writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func decode(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return apperrors.Invalid("malformed request body")
	}
	return nil
}
