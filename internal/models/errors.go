package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for structured error handling.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeRequestFailed = "REQUEST_FAILED"
	ErrCodeNetwork       = "NETWORK_ERROR"
	ErrCodeClipboard     = "CLIPBOARD_ERROR"
)

// Sentinel errors
var (
	ErrBusy        = errors.New("action already in progress")
	ErrTabDisabled = errors.New("tab is disabled")
	ErrUnknownTab  = errors.New("unknown tab")
	ErrEmptyToken  = errors.New("no token to copy")
)

// APIError represents a non-2xx response from the API.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Code    string
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed [%s]: %s", strings.Join(e.Fields, ","), e.Message)
}

// RequestError is a failed network action, whether rejected by the API or never answered.
type RequestError struct {
	Action  string
	Code    string
	Message string
	Err     error
}

// NewRequestError classifies err: API rejections get ErrCodeRequestFailed and
// failedMsg, everything else ErrCodeNetwork and networkMsg.
func NewRequestError(action, failedMsg, networkMsg string, err error) *RequestError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &RequestError{Action: action, Code: ErrCodeRequestFailed, Message: failedMsg, Err: err}
	}
	return &RequestError{Action: action, Code: ErrCodeNetwork, Message: networkMsg, Err: err}
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s [%s]: %s: %v", e.Action, e.Code, e.Message, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status behind the error, or 0 if none was received.
func (e *RequestError) StatusCode() int {
	var apiErr *APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
