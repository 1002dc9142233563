package errs

import (
	"errors"

	pkgerr "github.com/pkg/errors"
)

var (
	// ErrValidation covers malformed input, including a missing required
	// completion comment.
	ErrValidation = errors.New("validation failed")
	// ErrPermission is returned when a role or ownership guard rejects
	// the requestor.
	ErrPermission = errors.New("permission denied")
	// ErrConflict is returned when a claim race is lost or a transition
	// is requested from an invalid source state.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	// ErrDelivery marks a failed gateway send. Never fatal.
	ErrDelivery = errors.New("delivery failed")
	// ErrPersistence marks an unavailable store; the triggering operation
	// is aborted with no partial state.
	ErrPersistence = errors.New("persistence failed")
)

func Validationf(format string, args ...any) error {
	return pkgerr.Wrapf(ErrValidation, format, args...)
}

func Permissionf(format string, args ...any) error {
	return pkgerr.Wrapf(ErrPermission, format, args...)
}

func Conflictf(format string, args ...any) error {
	return pkgerr.Wrapf(ErrConflict, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return pkgerr.Wrapf(ErrNotFound, format, args...)
}

func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsPermission(err error) bool  { return errors.Is(err, ErrPermission) }
func IsConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsDelivery(err error) bool    { return errors.Is(err, ErrDelivery) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
