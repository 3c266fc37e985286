package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"

	"clinic-schedule-api/internal/model"
)

const errorDomain = "schedule.clinic"

// ErrorInfo reasons attached to FailedPrecondition statuses.
const (
	ReasonInvalidTransition = "INVALID_TRANSITION"
	ReasonInvalidState      = "INVALID_STATE"
)

// toStatus maps the shared error taxonomy onto gRPC codes. Anything outside
// it is logged and reported as a bare Internal error.
func (h *Handler) toStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	msg := err.Error()
	switch {
	case errors.Is(err, model.ErrValidation):
		return withDetails(codes.InvalidArgument, msg, &errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Description: msg}},
		})
	case errors.Is(err, model.ErrForbidden):
		return status.Error(codes.PermissionDenied, msg)
	case errors.Is(err, model.ErrInvalidTransition):
		return withDetails(codes.FailedPrecondition, msg, &errdetails.ErrorInfo{
			Reason: ReasonInvalidTransition, Domain: errorDomain,
		})
	case errors.Is(err, model.ErrInvalidState):
		return withDetails(codes.FailedPrecondition, msg, &errdetails.ErrorInfo{
			Reason: ReasonInvalidState, Domain: errorDomain,
		})
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, model.ErrConflict):
		return status.Error(codes.AlreadyExists, msg)
	case errors.Is(err, model.ErrAuth):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}

	h.log.Error("rpc failed", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

func withDetails(code codes.Code, msg string, detail protoadapt.MessageV1) error {
	st, err := status.New(code, msg).WithDetails(detail)
	if err != nil {
		return status.Error(code, msg)
	}
	return st.Err()
}
