package handler

import (
	"errors"

	"github.com/ogurasousui/codex-task-report/internal/core/report"
	"github.com/ogurasousui/codex-task-report/internal/core/task"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, task.ErrInvalidArgument),
		errors.Is(err, task.ErrTypeMismatch),
		errors.Is(err, report.ErrInvalidRunID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, report.ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, task.ErrIOFailure):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
