package wireformat

import (
	"context"
	"errors"
	"fmt"
)

// ErrorDetail is the serializable form of a result cause.
// Error Types: "timeout", "canceled", "codec", "internal"
type ErrorDetail struct {
	Message string       `json:"message" yaml:"message"`
	Type    string       `json:"type" yaml:"type"`
	Code    string       `json:"code,omitempty" yaml:"code,omitempty"`
	Wrapped *ErrorDetail `json:"wrapped,omitempty" yaml:"wrapped,omitempty"`
}

// Error implements the error interface for ErrorDetail.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

func (e *ErrorDetail) Unwrap() error {
	if e == nil || e.Wrapped == nil {
		return nil
	}
	return e.Wrapped
}

// ToErrorDetail converts a Go error to an ErrorDetail so it can be
// serialized. The original error text is kept as the message; the type
// records timeouts, cancellation and codec failures.
func ToErrorDetail(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	if detail, ok := err.(*ErrorDetail); ok {
		return detail
	}

	var codecErr *CodecError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ErrorDetail{Message: err.Error(), Type: "timeout"}
	case errors.Is(err, context.Canceled):
		return &ErrorDetail{Message: err.Error(), Type: "canceled"}
	case errors.As(err, &codecErr):
		return &ErrorDetail{
			Message: codecErr.Error(),
			Type:    "codec",
			Code:    codecErr.Op + "_" + codecErr.Format,
		}
	}

	return &ErrorDetail{Message: err.Error(), Type: "internal"}
}

// CodecError represents a failure to encode or decode a serialized bundle.
type CodecError struct {
	Op     string // "marshal", "unmarshal" or "validate"
	Format string // "json" or "yaml"
	Err    error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Op, e.Format, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
