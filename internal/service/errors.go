package service

import "errors"

var (
	// ErrDuplicateIncident - заявление с таким incident_id уже существует (409)
	ErrDuplicateIncident = errors.New("incident ID already exists")
	// ErrNotFound - заявление не найдено
	ErrNotFound = errors.New("report not found")
	// ErrExhaustedRetries - за отведенное число попыток не найден уникальный ID
	ErrExhaustedRetries = errors.New("failed to generate unique incident ID")
	// ErrStorage - сбой объектного хранилища
	ErrStorage = errors.New("storage failure")
	// ErrValidation - некорректный ввод клиента (400)
	ErrValidation = errors.New("validation failed")
)

// ValidationError несет сообщение, которое можно показать пользователю как есть
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}
