package coach

import (
	"errors"
	"fmt"

	"github.com/xostack/writewise/response"
)

// Operation names an orchestration entry point.
type Operation string

const (
	OpGenerateTopic Operation = "generate_topic"
	OpEvaluateText  Operation = "evaluate_text"
)

var (
	// ErrService matches every *ServiceError via errors.Is.
	ErrService = errors.New("model service failed")

	// ErrSuperseded is returned when a newer request started before this one
	// finished; its result was discarded and the session state left alone.
	ErrSuperseded = errors.New("request superseded by a newer one")

	ErrEmptyText       = errors.New("text is empty")
	ErrTooFewSentences = errors.New("text has fewer than three sentences")
)

// InputError is a local precondition failure detected before any model call.
type InputError struct {
	Message MessageKey
	Err     error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// ServiceError wraps a failure of the model call itself: network, auth, quota
// or any other error returned by the provider.
type ServiceError struct {
	Op  Operation
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrService.Error(), e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrService }

// outcome labels err for metrics and logs.
func outcome(err error) string {
	var inputErr *InputError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &inputErr):
		return "input_error"
	case errors.Is(err, response.ErrDecode):
		return "decode_error"
	case errors.Is(err, response.ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrService):
		return "service_error"
	default:
		return "error"
	}
}
