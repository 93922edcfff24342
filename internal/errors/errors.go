package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// appError implements the Error interface. Values are never modified after
// creation; the With methods return copies.
type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func newError(code ErrorCode, message string, err error, data any) *appError {
	return &appError{code: code, message: message, err: err, data: data}
}

// Error renders "message[: data][: cause]". The message falls back to the
// code's registered text. Struct data, such as the phase records the
// telemetry store attaches, is rendered with field names.
func (e *appError) Error() string {
	var b strings.Builder

	if e.message != "" {
		b.WriteString(e.message)
	} else {
		b.WriteString(GetErrorMessage(e.code))
	}
	if e.data != nil {
		b.WriteString(": ")
		b.WriteString(formatData(e.data))
	}
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

func formatData(data any) string {
	if reflect.Indirect(reflect.ValueOf(data)).Kind() == reflect.Struct {
		return fmt.Sprintf("%+v", data)
	}

	return fmt.Sprint(data)
}

func (e *appError) Code() ErrorCode {
	return e.code
}

func (e *appError) WithMessage(msg string) Error {
	return newError(e.code, msg, e.err, e.data)
}

func (e *appError) WithData(data any) Error {
	return newError(e.code, e.message, e.err, data)
}

func (e *appError) GetData() any {
	return e.data
}

func (e *appError) Unwrap() error {
	return e.err
}

func (e *appError) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Code() == e.code
}

type defaultFactory struct{}

func (*defaultFactory) New(code ErrorCode) Error {
	return newError(code, "", nil, nil)
}

func (*defaultFactory) Wrap(code ErrorCode, err error) Error {
	return newError(code, "", err, nil)
}

func (*defaultFactory) WithMessage(code ErrorCode, msg string) Error {
	return newError(code, msg, nil, nil)
}

func (*defaultFactory) WithData(code ErrorCode, data any) Error {
	return newError(code, "", nil, data)
}

// New creates a Factory instance for error creation
func New() Factory {
	return &defaultFactory{}
}

// Code extracts the outermost ErrorCode carried by err, if any
func Code(err error) (ErrorCode, bool) {
	var e Error
	if As(err, &e) {
		return e.Code(), true
	}

	return "", false
}
