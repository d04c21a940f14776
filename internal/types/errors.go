package types

import (
	"errors"
	"strings"
)

// Error taxonomy shared by every layer. Storage translates driver errors
// into these sentinels, the service layer adds ErrInvalidInput, and the
// front-ends map them to status codes / exit codes.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrDuplicateRegistration = errors.New("student is already registered to this course")
	ErrNotFound              = errors.New("not found")
)

// ErrorKind names a class of failure.
type ErrorKind string

const (
	KindInvalidInput          ErrorKind = "InvalidInput"
	KindDuplicateKey          ErrorKind = "DuplicateKey"
	KindDuplicateRegistration ErrorKind = "DuplicateRegistration"
	KindNotFound              ErrorKind = "NotFound"
	KindStorageFailure        ErrorKind = "StorageFailure"
)

// KindOf classifies err. Anything not recognised is a storage failure.
// DuplicateRegistration is checked before DuplicateKey because storage
// wraps the former around the latter.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrDuplicateRegistration):
		return KindDuplicateRegistration
	case errors.Is(err, ErrDuplicateKey):
		return KindDuplicateKey
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindStorageFailure
	}
}

// FieldError is a single failed form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed field of one form. It satisfies
// errors.Is(err, ErrInvalidInput).
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, e := range v {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// NotFoundError names the entity that a lookup missed.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found: " + e.Key
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
