package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindDependency   Kind = "dependency"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error is the typed failure returned by every service operation.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) ErrorKind() string     { return string(e.Kind) }
func (e *Error) ErrorCode() string     { return e.Code }
func (e *Error) PublicMessage() string { return e.Message }

func (e *Error) wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

func (e *Error) withMessage(format string, args ...any) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrValidation          = newError(KindValidation, "VALIDATION_FAILED", "invalid input")
	ErrUnsupportedFileType = newError(KindValidation, "UNSUPPORTED_FILE_TYPE", "screenshot must be a JPEG, PNG, GIF or WebP image")
	ErrInvalidTeamSize     = newError(KindValidation, "INVALID_TEAM_SIZE", "team member count does not match the required team size")
	ErrInvalidStatus       = newError(KindValidation, "INVALID_STATUS_FILTER", "invalid status filter, use: pending, approved or rejected")

	ErrDuplicateEmail     = newError(KindConflict, "DUPLICATE_EMAIL", "email already registered")
	ErrAlreadyApproved    = newError(KindConflict, "ALREADY_APPROVED", "payment already approved")
	ErrAlreadyRejected    = newError(KindConflict, "ALREADY_REJECTED", "payment already rejected")
	ErrNoTickets          = newError(KindConflict, "NO_TICKETS", "registration has no tickets")
	ErrPaymentNotApproved = newError(KindConflict, "PAYMENT_NOT_APPROVED", "payment not approved")
	ErrTicketDeactivated  = newError(KindConflict, "TICKET_DEACTIVATED", "ticket has been deactivated")
	ErrAlreadyCheckedIn   = newError(KindConflict, "ALREADY_CHECKED_IN", "ticket already checked in")
	ErrNotCheckedIn       = newError(KindConflict, "NOT_CHECKED_IN", "ticket has not been checked in")
	ErrAlreadyCheckedOut  = newError(KindConflict, "ALREADY_CHECKED_OUT", "ticket already checked out")
	ErrLastSuperadmin     = newError(KindConflict, "LAST_SUPERADMIN", "at least one active superadmin must remain")
	ErrAdminExists        = newError(KindConflict, "ADMIN_EXISTS", "username or email already registered")

	ErrRegistrationNotFound = newError(KindNotFound, "REGISTRATION_NOT_FOUND", "registration not found")
	ErrTicketNotFound       = newError(KindNotFound, "TICKET_NOT_FOUND", "ticket not found")
	ErrAdminNotFound        = newError(KindNotFound, "ADMIN_NOT_FOUND", "admin not found")

	ErrStorageUnavailable = newError(KindDependency, "STORAGE_UNAVAILABLE", "file storage is unavailable")
	ErrQRGenerationFailed = newError(KindDependency, "QR_GENERATION_FAILED", "failed to generate ticket QR codes")
	ErrDatabase           = newError(KindDependency, "DATABASE_ERROR", "database error")

	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
	ErrInvalidToken       = newError(KindUnauthorized, "INVALID_TOKEN", "invalid or expired token")
	ErrTokenRevoked       = newError(KindUnauthorized, "TOKEN_REVOKED", "token has been revoked")

	ErrAdminInactive    = newError(KindForbidden, "ADMIN_INACTIVE", "admin account is inactive")
	ErrInsufficientRole = newError(KindForbidden, "INSUFFICIENT_ROLE", "superadmin role required")
)

// dbError passes typed errors through and wraps anything else as ErrDatabase.
func dbError(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return ErrDatabase.wrap(err)
}

func notFoundOr(err error, notFound *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return dbError(err)
}

// validationError flattens validator output into a single readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrValidation.wrap(err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return ErrValidation.withMessage("%s", strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
