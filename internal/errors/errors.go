package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Standard sentinel errors for type checking
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrCorruptData  = errors.New("corrupt data")
	ErrStorageWrite = errors.New("storage write failed")
	ErrClosed       = errors.New("card store is closed")
)

// NotFoundError indicates a resource doesn't exist.
type NotFoundError struct {
	Resource string // "card", "config"
	ID       string // The identifier that wasn't found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError indicates invalid user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// FieldErrors carries every per-field message produced by one form validation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = fmt.Sprintf("%s: %s", field, e[field])
	}
	return "validation failed (" + strings.Join(parts, "; ") + ")"
}

func (e FieldErrors) Unwrap() error {
	return ErrInvalidInput
}

// CorruptDataError indicates a persisted blob exists but can't be decoded
// into a card list.
type CorruptDataError struct {
	Key    string
	Reason string
	Err    error
}

func (e *CorruptDataError) Error() string {
	msg := fmt.Sprintf("corrupt data under key %q: %s", e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptDataError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorruptData, e.Err}
	}
	return []error{ErrCorruptData}
}

// StorageWriteError indicates the storage backend rejected a write.
// Callers treat it as soft: log it and keep going.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write key %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() []error {
	return []error{ErrStorageWrite, e.Err}
}

// Helper constructors for common cases

func CardNotFound(id int) error {
	return &NotFoundError{Resource: "card", ID: fmt.Sprintf("%d", id)}
}

func InvalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func CorruptData(key, reason string, err error) error {
	return &CorruptDataError{Key: key, Reason: reason, Err: err}
}

func StorageWrite(key string, err error) error {
	return &StorageWriteError{Key: key, Err: err}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCorrupt checks if an error is a corrupt-data error.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptData)
}

// IsStorageWrite checks if an error is a storage write error.
func IsStorageWrite(err error) bool {
	return errors.Is(err, ErrStorageWrite)
}
