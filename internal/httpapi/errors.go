package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/session"
	"github.com/fitcoin-app/fitcoin/internal/tracker"
	"github.com/fitcoin-app/fitcoin/pkg/logger"
	"github.com/fitcoin-app/fitcoin/pkg/metrics"
)

// errorBody is the JSON error envelope returned by every endpoint.
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeError maps the error taxonomy onto HTTP status codes and writes the
// JSON envelope. Unknown errors become an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	body := errorBody{
		Code:    apperr.CodeStorage,
		Message: "Something went wrong. Please try again.",
	}

	var appErr *apperr.AppError
	switch {
	case errors.As(err, &appErr):
		status = statusForCode(appErr.Code)
		body = errorBody{
			Code:      appErr.Code,
			Message:   appErr.UserMessage,
			Retryable: appErr.Retryable,
		}
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
		body = errorBody{
			Code:    apperr.CodeInsufficientFunds,
			Message: "Not enough coins for this purchase.",
		}
	case errors.Is(err, session.ErrNoSession):
		status = http.StatusUnauthorized
		body = errorBody{
			Code:    apperr.CodeNotRegistered,
			Message: "Please log in first.",
		}
	case errors.Is(err, tracker.ErrAlreadyTracking), errors.Is(err, tracker.ErrNotTracking):
		status = http.StatusConflict
		body = errorBody{
			Code:    apperr.CodeState,
			Message: err.Error(),
		}
	}

	metrics.RecordError(body.Code, severityLabel(appErr))

	if log != nil {
		log.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("code", body.Code),
			slog.String("correlation_id", logger.CorrelationIDFromContext(r.Context())),
			slog.Any("error", err),
		)
	}

	writeJSON(w, status, errorResponse{Error: body})
}

func statusForCode(code string) int {
	switch code {
	case apperr.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case apperr.CodeNotRegistered:
		return http.StatusUnauthorized
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeRemoteOperationFailed:
		return http.StatusBadGateway
	case apperr.CodeState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func severityLabel(appErr *apperr.AppError) string {
	if appErr == nil {
		return "unknown"
	}
	return string(appErr.Severity)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
