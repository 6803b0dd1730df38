package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation for the transport layer.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindInvalidCredentials
	KindInvalidOTP
	KindExpired
	KindOTPNotVerified
	KindSigning
	KindStore
	KindUpstream
	KindInternal
)

var kindNames = map[ErrorKind]string{
	KindValidation:         "ValidationError",
	KindConflict:           "Conflict",
	KindNotFound:           "NotFound",
	KindUnauthenticated:    "Unauthenticated",
	KindForbidden:          "Forbidden",
	KindInvalidCredentials: "InvalidCredentials",
	KindInvalidOTP:         "InvalidOTP",
	KindExpired:            "Expired",
	KindOTPNotVerified:     "OTPNotVerified",
	KindSigning:            "SigningError",
	KindStore:              "StoreError",
	KindUpstream:           "UpstreamServiceError",
	KindInternal:           "InternalError",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Internal reports whether the kind is a server-side failure rather than a
// problem with the request.
func (k ErrorKind) Internal() bool {
	return k == KindSigning || k == KindStore || k == KindUpstream || k == KindInternal
}

// AppError is the domain failure returned by every AuthService operation.
// Message is safe to show to the client; Err holds the internal cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or zero if err is not an *AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}
