package errors

// ErrorCode identifies an error condition independently of its message
type ErrorCode string

// Error is a coded error. Data and the wrapped cause are both optional and
// are appended to the message when present.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
	// Is matches any other Error carrying the same code
	Is(target error) bool
}

// Factory creates coded errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}

// HasCode reports whether any error in err's chain carries code
func HasCode(err error, code ErrorCode) bool {
	return Is(err, &appError{code: code})
}
