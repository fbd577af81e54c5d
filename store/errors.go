package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phillip/helping-hands-go/models"
)

var errNotReady = errors.New("mongodb is not connected")

// mapError is the only place driver errors are inspected. Everything leaving
// this package is a *models.Error.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *models.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return &models.Error{
			Kind:    models.KindNotFound,
			Code:    models.ErrCodeNotFound,
			Message: "Resource not found",
			Err:     err,
		}
	case mongo.IsDuplicateKeyError(err):
		return &models.Error{
			Kind:    models.KindConflict,
			Code:    models.ErrCodeDuplicateKey,
			Message: "Duplicate field value entered",
			Err:     fmt.Errorf("%s: %w", op, err),
		}
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return models.NewUnavailableError(fmt.Errorf("%s: %w", op, err))
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorLabel("RetryableWriteError") {
		return models.NewUnavailableError(fmt.Errorf("%s: %w", op, err))
	}

	return models.NewInternalError("Database operation failed", fmt.Errorf("%s: %w", op, err))
}
