package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNoSelection = "NO_SELECTION"
	CodeImport      = "IMPORT_ERROR"
	CodeWiring      = "WIRING_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeRateLimited = "RATE_LIMITED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key    string
	Paylod any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:    key,
		Paylod: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	BusErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		BusErr.Details[detail.Key] = detail.Paylod
	}

	return BusErr
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewNoSelectionError(action string) *BusinessError {
	return &BusinessError{
		Code:    CodeNoSelection,
		Message: "Не выбрано ни одной задачи",
		Details: map[string]any{
			"action": action,
		},
	}
}

// NewImportError - "Invalid file format": импорт отклонён, коллекция не тронута
func NewImportError(reason string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeImport,
		Message: "Invalid file format",
		Details: map[string]any{
			"reason": reason,
		},
		Err: err,
	}
}

func NewWiringError(component string) *BusinessError {
	return &BusinessError{
		Code:    CodeWiring,
		Message: fmt.Sprintf("Не подключён обязательный компонент '%s'", component),
		Details: map[string]any{
			"component": component,
		},
	}
}

func NewNotFound(id int64) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("Задача %d не найдена", id),
		Details: map[string]any{
			"id": id,
		},
	}
}

func NewRateLimitError(retryAfter int) *BusinessError {
	return &BusinessError{
		Code:    CodeRateLimited,
		Message: "Слишком много запросов. Попробуйте позже.",
		Details: map[string]any{
			"retry_after": retryAfter,
		},
	}
}

// IsCode проверяет, что в цепочке ошибок есть BusinessError с кодом code
func IsCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}
