package away

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed command arguments. State is unchanged.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PreconditionError reports a command issued in the wrong situation, such as
// an AI command while AI is disabled. State is unchanged.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// CollaboratorError wraps a failure of an external collaborator (AI call,
// image download). Prefix is prepended to the underlying error text.
type CollaboratorError struct {
	Prefix string
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Prefix, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Preconditionf builds a PreconditionError.
func Preconditionf(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

// ReplyText turns an error returned by a command handler into the text sent
// back to the owner.
func ReplyText(err error) string {
	var (
		ve *ValidationError
		pe *PreconditionError
		ce *CollaboratorError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.As(err, &pe):
		return pe.Msg
	case errors.As(err, &ce):
		return ce.Error()
	}
	return "Error: " + err.Error()
}
