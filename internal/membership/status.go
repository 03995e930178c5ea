// Package membership derives a member's lifecycle status from the stored
// account, its latest membership application and the lookup error.
package membership

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"memberhub_backend/internal/models"
	"memberhub_backend/pkg/apperrors"
)

type Status string

const (
	StatusUnregistered Status = "unregistered"
	StatusPending      Status = "pending"
	StatusActive       Status = "active"
	StatusRejected     Status = "rejected"
	// StatusLoading is only ever produced by clients while a lookup is in
	// flight. The server never returns it.
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnregistered, StatusPending, StatusActive, StatusRejected, StatusLoading, StatusError:
		return true
	}
	return false
}

// IsNotFound matches both gorm misses and mapped 404 AppErrors.
func IsNotFound(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.HTTPCode == http.StatusNotFound
	}
	return false
}

// Derive computes the status. latest may be nil when the user never applied.
func Derive(user *models.User, latest *models.MembershipApplication, err error) Status {
	switch {
	case err != nil && IsNotFound(err):
		return StatusUnregistered
	case err != nil:
		return StatusError
	case user == nil:
		return StatusUnregistered
	}

	if user.ApprovalStatus == models.ApprovalApproved {
		return StatusActive
	}

	if latest != nil {
		switch latest.Status {
		case models.ApprovalPending:
			return StatusPending
		case models.ApprovalRejected:
			return StatusRejected
		case models.ApprovalApproved:
			return StatusActive
		}
	}

	if user.ApprovalStatus == models.ApprovalRejected {
		return StatusRejected
	}
	if user.RoleSet().IsEmpty() {
		return StatusUnregistered
	}
	// roles chosen, waiting in the admin user queue
	return StatusPending
}

// FromHTTP maps the status code of GET /users/me the way clients do:
// 404 means no account, any other failure is an error, success is active.
func FromHTTP(code int) Status {
	switch {
	case code == http.StatusNotFound:
		return StatusUnregistered
	case code < 200 || code > 299:
		return StatusError
	default:
		return StatusActive
	}
}
