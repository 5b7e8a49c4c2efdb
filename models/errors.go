package models

import "github.com/pkg/errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
)

// FieldError описывает ошибку конкретного поля ввода.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error { return err.Err }

// DependencyError сообщает о сбое внешней зависимости. Workflow логирует ее
// и продолжает работу, переход состояния не откатывается.
type DependencyError struct {
	Dependency string
	Err        error
}

func (err *DependencyError) Error() string {
	return err.Dependency + ": " + err.Err.Error()
}

func (err *DependencyError) Unwrap() error { return err.Err }
