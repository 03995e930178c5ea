package services

import (
	"errors"
	"net/http"

	"memberhub_backend/pkg/apperrors"
)

// notFoundOr maps a repository sentinel to a 404 in domain and anything
// else to a 500.
func notFoundOr(err, sentinel error, domain, message string) error {
	if errors.Is(err, sentinel) {
		return apperrors.Wrap(err, apperrors.CodeNotFound, domain, message, http.StatusNotFound)
	}
	return apperrors.InternalError(err)
}

// passThrough keeps AppErrors returned from inside a transaction intact.
func passThrough(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.InternalError(err)
}
