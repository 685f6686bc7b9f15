package app

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where in the pipeline a run failed and who can fix it.
type Kind string

const (
	// KindInvalidRequest: caller's fault, retry only with changed input.
	KindInvalidRequest Kind = "invalid_request"
	// KindUnauthenticated: caller must re-authenticate.
	KindUnauthenticated Kind = "unauthenticated"
	// KindConfig: operator's fault, not user-recoverable.
	KindConfig Kind = "config"
	// KindProvider: transient transport/provider fault, safe to retry.
	KindProvider Kind = "provider"
	// KindSchema: the model broke the output contract; a fresh sample
	// will likely conform.
	KindSchema Kind = "schema"
	// KindPersistence: the result validated but could not be stored.
	KindPersistence Kind = "persistence"
)

// PipelineError is the single failure type the orchestrator emits. Every
// stage failure aborts the run and surfaces as one of these.
type PipelineError struct {
	Kind    Kind
	Status  int // set only for provider failures whose status is forwarded
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the failure kind to the caller-facing status code. An
// explicit Status wins so provider statuses and not-found pass through.
func (e *PipelineError) HTTPStatus() int {
	if e.Status > 0 {
		return e.Status
	}
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindProvider:
		return http.StatusBadGateway
	case KindSchema:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func AsPipelineError(err error) (*PipelineError, bool) {
	var pErr *PipelineError
	ok := errors.As(err, &pErr)
	return pErr, ok
}

func errInvalid(err error) *PipelineError {
	return &PipelineError{Kind: KindInvalidRequest, Message: err.Error(), Err: err}
}

func errUnauthenticated() *PipelineError {
	return &PipelineError{Kind: KindUnauthenticated, Message: "Unauthorized"}
}

func errConfig(err error) *PipelineError {
	return &PipelineError{Kind: KindConfig, Message: "Server configuration error", Err: err}
}

func errProvider(status int, message string, err error) *PipelineError {
	return &PipelineError{Kind: KindProvider, Status: status, Message: message, Err: err}
}

func errSchema(err error) *PipelineError {
	return &PipelineError{
		Kind:    KindSchema,
		Message: "Model did not return a valid script package. Try again.",
		Err:     err,
	}
}

func errPersistence(err error) *PipelineError {
	return &PipelineError{Kind: KindPersistence, Message: "Failed to save generation", Err: err}
}
