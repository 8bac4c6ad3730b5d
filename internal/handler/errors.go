package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// errorDetail and errorResponse form the uniform error body
// {"error":{"code":"...","message":"..."}}.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

const (
	codeNotFound   = "not_found"
	codeValidation = "validation_error"
	codeConflict   = "conflict"
	codeTooLarge   = "request_too_large"
	codeInternal   = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// requestError rejects a request before it reaches the service layer
// (malformed body, bad path or query parameter).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, codeValidation, message)
}

// fail maps a service error onto a response. notFound is the message used for
// domain.ErrNotFound, because the handler is the layer that knows what was
// being looked up.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, notFound)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, unwrapMessage(err, domain.ErrConflict))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.X.Create: validation error: name is required" -> "name is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, sentinel.Error()+": "); ok {
		return after
	}
	return msg
}

// decodeBody decodes a JSON request body into dst. An empty body is allowed
// only when optional is true. Oversized bodies map to 413.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF) && optional:
		return true
	case errors.Is(err, io.EOF):
		requestError(w, "request body is required")
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
	default:
		requestError(w, "malformed request body: "+err.Error())
	}
	return false
}
