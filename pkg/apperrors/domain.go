package apperrors

import (
	"net/http"
)

/*
Factories and predeclared values for common business and domain errors.
*/

// =========================================================================
// Factory functions (wrap lower-level errors, e.g. from a repository)
// =========================================================================

// ErrNotFound turns a repository miss into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict is the generic 409.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// =========================================================================
// Factory functions (new errors)
// =========================================================================

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus is a 409: the entity exists but is in the wrong state.
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Predeclared values
// =========================================================================

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email is already registered",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"auth",
	"Password must be at least 8 characters",
	http.StatusBadRequest,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

// --- Membership gates ---

// ErrRoleRequired is returned when the caller holds no participant role.
var ErrRoleRequired = New(
	CodeRoleRequired,
	"membership",
	"Select at least one role to continue",
	http.StatusForbidden,
).WithDetails(map[string]string{"redirect": "/select-role"})

var ErrProfileIncomplete = New(
	CodeProfileIncomplete,
	"membership",
	"Complete your profile to continue",
	http.StatusForbidden,
).WithDetails(map[string]string{"redirect": "/profile"})

var ErrNotApprovedMember = New(
	CodeNotApproved,
	"membership",
	"Your membership has not been approved yet",
	http.StatusForbidden,
)

var ErrPendingApplicationExists = New(
	CodeConflict,
	"membership",
	"A membership application is already under review",
	http.StatusConflict,
)

var ErrAlreadyReviewed = New(
	CodeInvalidStatus,
	"review",
	"This item has already been reviewed",
	http.StatusConflict,
)

// --- Opportunities & applications ---

var ErrOpportunityNotApproved = New(
	CodeInvalidStatus,
	"opportunity",
	"Opportunity is not approved",
	http.StatusConflict,
)

var ErrOpportunityClosed = New(
	CodeInvalidStatus,
	"opportunity",
	"Opportunity is closed",
	http.StatusConflict,
)

var ErrInvalidOpportunityDetails = New(
	CodeValidationFailed,
	"opportunity",
	"Opportunity details do not match the schema for its type",
	http.StatusBadRequest,
)

var ErrNotJobOpportunity = New(
	CodeInvalidOperation,
	"application",
	"Applications are accepted for job opportunities only",
	http.StatusBadRequest,
)

var ErrCannotApplyOwn = New(
	CodeInvalidOperation,
	"application",
	"You cannot apply to your own opportunity",
	http.StatusBadRequest,
)

var ErrDuplicateApplication = New(
	CodeAlreadyExists,
	"application",
	"You have already applied to this opportunity",
	http.StatusConflict,
)

var ErrInvalidApplicationTransition = New(
	CodeInvalidStatus,
	"application",
	"Status transition is not allowed",
	http.StatusConflict,
)

// --- Uploads & files ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"upload",
	"File is too large",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"upload",
	"Unsupported file type",
	http.StatusUnsupportedMediaType,
)
