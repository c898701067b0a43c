package rpc

import (
	"errors"

	"github.com/dmitrijs2005/orbit/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts a domain error into a gRPC status error. Errors that
// already carry a status are returned as is.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

// FromStatus converts a gRPC status error back into the matching domain
// error, keeping the server message. Unknown codes are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var base error
	switch st.Code() {
	case codes.Unauthenticated:
		switch st.Message() {
		case common.ErrTokenExpired.Error():
			return common.ErrTokenExpired
		case common.ErrRefreshTokenExpired.Error():
			return common.ErrRefreshTokenExpired
		}
		base = common.ErrorUnauthorized
	case codes.PermissionDenied:
		base = common.ErrorForbidden
	case codes.NotFound:
		base = common.ErrorNotFound
	case codes.AlreadyExists:
		base = common.ErrorAlreadyExists
	case codes.InvalidArgument:
		base = common.ErrorValidation
	default:
		return err
	}

	if st.Message() == base.Error() {
		return base
	}
	return &remoteError{base: base, msg: st.Message()}
}

type remoteError struct {
	base error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.base }
