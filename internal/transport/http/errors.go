package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"sleep-quiz-service/internal/domain"
)

// Error codes sent to clients.
const (
	codeInvalidRequest    = "invalid_request"
	codeValidationFailed  = "validation_failed"
	codeInvalidTransition = "invalid_transition"
	codeSubmitInFlight    = "submission_in_progress"
	codeAlreadySubmitted  = "already_submitted"
	codeSubmitFailed      = "submit_failed"
	codeNotFound          = "not_found"
	codeInternalError     = "internal_error"
	codeUnknownType       = "unknown_message_type"
)

var (
	errInvalidPayload = errors.New("invalid payload")
	errUnknownType    = errors.New("unsupported message type")
)

// ErrorResponse is the error envelope shared by REST replies and WS error frames.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// toErrorResponse maps service errors to client-facing codes and messages.
// Storage details never reach the client.
func toErrorResponse(err error) (int, ErrorResponse) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: codeValidationFailed, Message: verr.Message, Field: verr.Field}
	case errors.Is(err, errInvalidPayload):
		return http.StatusBadRequest, ErrorResponse{Error: codeInvalidRequest, Message: err.Error()}
	case errors.Is(err, errUnknownType):
		return http.StatusBadRequest, ErrorResponse{Error: codeUnknownType, Message: err.Error()}
	case errors.Is(err, domain.ErrStorage):
		return http.StatusBadGateway, ErrorResponse{Error: codeSubmitFailed, Message: domain.SubmitFailedMessage}
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict, ErrorResponse{Error: codeSubmitInFlight, Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict, ErrorResponse{Error: codeAlreadySubmitted, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusConflict, ErrorResponse{Error: codeInvalidTransition, Message: err.Error()}
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrCatalogNotFound):
		return http.StatusNotFound, ErrorResponse{Error: codeNotFound, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: codeInternalError, Message: "internal error"}
	}
}

// respondError writes a standardized error response.
func respondError(w http.ResponseWriter, err error) {
	status, body := toErrorResponse(err)
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
