package gerr

import (
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies errors surfaced by the analytics core.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindFatal        Kind = "fatal"
	KindEmpty        Kind = "empty"
	KindPrecondition Kind = "precondition"
	KindInvalid      Kind = "invalid"
	KindBusy         Kind = "busy"
	KindLimited      Kind = "limited"
)

var kindCodes = map[Kind]codes.Code{
	KindFatal:        codes.Unavailable,
	KindEmpty:        codes.NotFound,
	KindPrecondition: codes.FailedPrecondition,
	KindInvalid:      codes.InvalidArgument,
	KindBusy:         codes.Aborted,
	KindLimited:      codes.ResourceExhausted,
}

var (
	ErrEmptyResult   = New(KindEmpty, "no data for the selected filters")
	ErrFitInProgress = New(KindBusy, "forecast fit already in progress")
	ErrNotLoaded     = New(KindFatal, "dataset is not loaded")
	ErrRateLimited   = New(KindLimited, "too many requests, please try again later")
)

// Error is a structured error carrying a kind and a message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New returns a structured error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns a structured error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on kind and message so sentinel values survive wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// GRPCStatus lets status.FromError and status.Code understand structured errors.
func (e *Error) GRPCStatus() *status.Status {
	code, ok := kindCodes[e.Kind]
	if !ok {
		code = codes.Unknown
	}
	return status.New(code, e.Error())
}

// KindOf returns the kind of the first structured error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Code returns the grpc code for err.
func Code(err error) codes.Code {
	var e *Error
	if errors.As(err, &e) {
		return e.GRPCStatus().Code()
	}
	return status.Code(err)
}

// HTTPStatus maps err to an http status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return runtime.HTTPStatusFromCode(Code(err))
}
