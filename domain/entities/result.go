// Package entities provides the core domain entities shared by the updater
// client: the result record reported by the Control Hub Updater and the
// update requests that produce those results.
package entities

import (
	"fmt"
	"strings"
)

// Result is a single report from the updater: a status update, a prompt,
// an error or a success message. Results are immutable once built.
type Result struct {
	resultType    ResultType
	detailMessage *string
	cause         error
}

// ResultOption sets an optional field of a Result.
type ResultOption func(*Result)

// WithDetailMessage attaches a free-text detail message.
func WithDetailMessage(msg string) ResultOption {
	return func(r *Result) {
		r.detailMessage = &msg
	}
}

// WithCause attaches the underlying error. A nil cause is allowed.
func WithCause(err error) ResultOption {
	return func(r *Result) {
		r.cause = err
	}
}

// NewResult creates a Result. Any combination of fields is accepted,
// including a SUBSTITUTED type without a detail message.
func NewResult(resultType ResultType, opts ...ResultOption) Result {
	r := Result{resultType: resultType}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r Result) ResultType() ResultType {
	return r.resultType
}

func (r Result) Category() Category {
	return r.resultType.Category()
}

func (r Result) Code() int {
	return r.resultType.Code()
}

func (r Result) PresentationType() PresentationType {
	return r.resultType.PresentationType()
}

func (r Result) DetailMessageType() DetailMessageType {
	return r.resultType.DetailMessageType()
}

// Cause returns the underlying error, or nil.
func (r Result) Cause() error {
	return r.cause
}

// Message returns the rendered message. For SUBSTITUTED results the stored
// detail message (or an empty string) replaces the template placeholder.
func (r Result) Message() string {
	template := r.resultType.MessageTemplate()
	if r.DetailMessageType() != DetailSubstituted {
		return template
	}
	// Read the field, not DetailMessage(): that one hides substituted details.
	detail := ""
	if r.detailMessage != nil {
		detail = *r.detailMessage
	}
	return substitute(template, detail)
}

// DetailMessage returns the detail message, or nil when there is none.
// SUBSTITUTED results always return nil since the detail is already part of
// Message.
func (r Result) DetailMessage() *string {
	if r.DetailMessageType() == DetailSubstituted || r.detailMessage == nil {
		return nil
	}
	msg := *r.detailMessage
	return &msg
}

// IsTerminal reports whether the result ends an update: success, error or
// prompt. Status results keep the update in flight.
func (r Result) IsTerminal() bool {
	switch r.PresentationType() {
	case PresentationSuccess, PresentationError, PresentationPrompt:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	return fmt.Sprintf("%s/%s/%d: %s", displayName(string(r.Category())),
		displayName(string(r.PresentationType())), r.Code(), r.Message())
}

// substitute replaces the first %s in template with detail, collapses %%
// into a literal percent sign and turns %n into a newline. Any other verb is
// left as written.
func substitute(template, detail string) string {
	var b strings.Builder
	b.Grow(len(template) + len(detail))

	replaced := false
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 == len(template) {
			b.WriteByte(c)
			continue
		}
		switch next := template[i+1]; {
		case next == '%':
			b.WriteByte('%')
			i++
		case next == 'n':
			b.WriteByte('\n')
			i++
		case next == 's' && !replaced:
			b.WriteString(detail)
			replaced = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// displayName renders an absent enum as UNKNOWN.
func displayName(name string) string {
	if name == "" {
		return "UNKNOWN"
	}
	return name
}
