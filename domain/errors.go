package domain

import (
	"errors"
	"fmt"
)

type ErrorCategory string

const (
	ClientErrorCategory      ErrorCategory = "client_error"
	ProviderErrorCategory    ErrorCategory = "provider_error"
	StageFatalErrorCategory  ErrorCategory = "stage_fatal"
	AssemblyContractCategory ErrorCategory = "assembly_contract"
	InternalErrorCategory    ErrorCategory = "internal"
)

// ProviderError is returned by provider adapters for transport failures,
// non-2xx responses and responses missing the expected payload.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

func NewProviderError(provider string, code string, message string) *ProviderError {
	return &ProviderError{Provider: provider, Code: code, Message: message}
}

// PipelineError carries the category used to decide how a failure surfaces to
// the caller.
type PipelineError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Details returns the underlying cause as a human readable string.
func (e *PipelineError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func ClientError(message string, err error) *PipelineError {
	return &PipelineError{Category: ClientErrorCategory, Message: message, Err: err}
}

func StageFatal(message string, err error) *PipelineError {
	return &PipelineError{Category: StageFatalErrorCategory, Message: message, Err: err}
}

func AssemblyContract(message string) *PipelineError {
	return &PipelineError{Category: AssemblyContractCategory, Message: message}
}

func Internal(message string, err error) *PipelineError {
	return &PipelineError{Category: InternalErrorCategory, Message: message, Err: err}
}

// CategoryOf classifies err. Unclassified errors are internal.
func CategoryOf(err error) ErrorCategory {
	var pipelineErr *PipelineError
	if errors.As(err, &pipelineErr) {
		return pipelineErr.Category
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return ProviderErrorCategory
	}
	return InternalErrorCategory
}

// RejectionError is a provider refusing the content itself, such as a safety
// filter. It is a business outcome rather than a transport failure.
type RejectionError struct {
	Provider string
	Reason   string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected the request: %s", e.Provider, e.Reason)
}
