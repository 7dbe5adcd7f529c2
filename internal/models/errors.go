package models

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound         = status.Errorf(codes.NotFound, "not found")
	ErrUpdateFailed     = status.Errorf(codes.FailedPrecondition, "update failed")
	ErrStoreUnavailable = status.Errorf(codes.Unavailable, "store unavailable")
	ErrInvalidArgument  = status.Errorf(codes.InvalidArgument, "invalid argument")
)

// OperationError carries the failing repository operation and the identifiers
// it was called with. The wrapped error is one of the kinds above, optionally
// joined with the underlying driver error.
type OperationError struct {
	Op  string
	IDs []any
	Err error
}

func NewOperationError(op string, err error, ids ...any) *OperationError {
	return &OperationError{Op: op, IDs: ids, Err: err}
}

func (e *OperationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	for i := 0; i+1 < len(e.IDs); i += 2 {
		if i == 0 {
			b.WriteString(" [")
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%v=%v", e.IDs[i], e.IDs[i+1])
		if i+3 >= len(e.IDs) {
			b.WriteString("]")
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Code returns the grpc code of the error kind, codes.Unknown if err carries none.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrUpdateFailed):
		return codes.FailedPrecondition
	case errors.Is(err, ErrStoreUnavailable):
		return codes.Unavailable
	case errors.Is(err, ErrInvalidArgument):
		return codes.InvalidArgument
	}
	return codes.Unknown
}
