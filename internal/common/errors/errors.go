// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Engine and workflow error codes.
const (
	// Caller-correctable input problems.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Referenced entity absent; terminal for the request.
	ErrCodeEoiNotFound         ErrorCode = "EOI_NOT_FOUND"
	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeRequirementNotFound ErrorCode = "REQUIREMENT_NOT_FOUND"
	ErrCodePreferenceNotFound  ErrorCode = "PREFERENCE_NOT_FOUND"
	ErrCodeProductNotFound     ErrorCode = "PRODUCT_NOT_FOUND"

	// Authorization failures; terminal, no retry.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// State-machine guard violation; caller must requery current state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"

	// Aggregator found no matching profile/requirement: an absent result,
	// not a failure.
	ErrCodeComputationSkipped ErrorCode = "COMPUTATION_SKIPPED"

	// Infrastructure errors.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeDiscoveryTriggerFailed ErrorCode = "DISCOVERY_TRIGGER_FAILED"

	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowEngineTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable field validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEoiNotFoundError creates a non-retryable missing-EOI error.
func NewEoiNotFoundError(eoiID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEoiNotFound,
		Message:   "Expression of interest not found",
		Details:   fmt.Sprintf("eoiId: %s", eoiID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable missing-profile error.
func NewProfileNotFoundError(side, profileID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Profile not found",
		Details:   fmt.Sprintf("side: %s, profileId: %s", side, profileID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequirementNotFoundError creates a non-retryable missing-requirement error.
func NewRequirementNotFoundError(requirementID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequirementNotFound,
		Message:   "Company requirement not found",
		Details:   fmt.Sprintf("requirementId: %s", requirementID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPreferenceNotFoundError creates a non-retryable missing-preference error.
func NewPreferenceNotFoundError(preferenceID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePreferenceNotFound,
		Message:   "BD partner preference not found",
		Details:   fmt.Sprintf("preferenceId: %s", preferenceID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProductNotFoundError creates a non-retryable missing-product error.
func NewProductNotFoundError(productID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductNotFound,
		Message:   "Product not found",
		Details:   fmt.Sprintf("productId: %s", productID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable missing-identity error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Caller has no valid identity",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a non-retryable authorization error: the caller
// is authenticated but not permitted to act on this entity.
func NewForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "Caller is not permitted to perform this action",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStateError creates a non-retryable state-machine guard error.
func NewInvalidStateError(action, currentStatus string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidState,
		Message:   fmt.Sprintf("Action %q not allowed in current state", action),
		Details:   fmt.Sprintf("status: %s", currentStatus),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewComputationSkippedError marks an absent scoring result. Not a failure:
// the aggregator had no profile or requirement/preference to score against.
func NewComputationSkippedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeComputationSkipped,
		Message:   "Match computation skipped",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDiscoveryTriggerFailedError creates a retryable error for the
// fire-and-forget discovery trigger. Callers log it and move on; it never
// propagates to the EOI creation path.
func NewDiscoveryTriggerFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDiscoveryTriggerFailed,
		Message:   "Candidate discovery trigger failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowEngineUnavailableError creates a retryable Zeebe connectivity error.
func NewWorkflowEngineUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowEngineUnavailable,
		Message:   "Workflow engine unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowEngineTimeoutError creates a retryable Zeebe timeout error.
func NewWorkflowEngineTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowEngineTimeout,
		Message:   "Workflow engine request timed out",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical
// by convention).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodeEoiNotFound:              "EOI_NOT_FOUND",
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeRequirementNotFound:      "REQUIREMENT_NOT_FOUND",
	ErrCodePreferenceNotFound:       "PREFERENCE_NOT_FOUND",
	ErrCodeProductNotFound:          "PRODUCT_NOT_FOUND",
	ErrCodeUnauthorized:             "UNAUTHORIZED",
	ErrCodeForbidden:                "FORBIDDEN",
	ErrCodeInvalidState:             "INVALID_STATE",
	ErrCodeComputationSkipped:       "COMPUTATION_SKIPPED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:            "INDEX_NOT_FOUND",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeDiscoveryTriggerFailed:   "DISCOVERY_TRIGGER_FAILED",

	ErrCodeWorkflowEngineUnavailable: "WORKFLOW_ENGINE_UNAVAILABLE",
	ErrCodeWorkflowEngineTimeout:     "WORKFLOW_ENGINE_TIMEOUT",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDiscoveryTriggerFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeWorkflowEngineTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UNAUTHORIZED") || strings.Contains(codeStr, "FORBIDDEN"):
		return "AUTHORIZATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND") && !strings.Contains(codeStr, "INDEX"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "STATE"):
		return "STATE_MACHINE"
	case strings.Contains(codeStr, "WORKFLOW_ENGINE"):
		return "WORKFLOW_ENGINE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "COMPUTATION") || strings.Contains(codeStr, "DISCOVERY"):
		return "MATCHING"
	default:
		return "OTHER"
	}
}
