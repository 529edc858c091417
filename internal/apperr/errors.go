// Package apperr defines the application error taxonomy and the policies
// for retrying and reporting failures.
package apperr

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes. Stable identifiers exposed in API responses and logs.
const (
	CodeInsufficientFunds     = "E100"
	CodeNotRegistered         = "E110"
	CodeValidation            = "E120"
	CodeRemoteOperationFailed = "E200"
	CodeStorage               = "E300"
	CodeState                 = "E400"
)

// AppError carries an error code, an operator-facing message and a
// user-facing message, plus retry and severity metadata.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewInsufficientFunds reports a debit or purchase that exceeds the
// current balance. Blocking notice to the user, nothing mutated.
func NewInsufficientFunds(balance, required int64) *AppError {
	return &AppError{
		Code:        CodeInsufficientFunds,
		Message:     fmt.Sprintf("insufficient funds: balance %d, required %d", balance, required),
		UserMessage: "You don't have enough FitCoins for this purchase",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewNotRegistered reports a login attempt with no persisted identity.
func NewNotRegistered() *AppError {
	return &AppError{
		Code:        CodeNotRegistered,
		Message:     "no registered user found",
		UserMessage: "No account found. Please register first",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewValidationError reports invalid registration or request input.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid input. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewRemoteOperationFailed reports a failed or timed-out call to the
// chain service. The triggering transaction must be rolled back.
func NewRemoteOperationFailed(operation string, cause error) *AppError {
	return &AppError{
		Code:        CodeRemoteOperationFailed,
		Message:     fmt.Sprintf("remote operation failed: %s", operation),
		UserMessage: "The network is busy right now. Please try again",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewStorageError reports a persistence failure.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeStorage,
		Message:     fmt.Sprintf("storage error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewStateError reports an operation attempted in the wrong tracker state.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        CodeState,
		Message:     msg,
		UserMessage: "That action is not possible right now",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}
