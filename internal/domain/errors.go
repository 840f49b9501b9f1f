package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate дубликат записи
	ErrDuplicate = errors.New("duplicate record")

	// ErrValidation неверные входные данные
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication не удалось получить учетные данные у внешнего провайдера
	ErrAuthentication = errors.New("authentication failed")

	// ErrUnsupportedFormat формат продукта не поддерживается
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrFulfillment провайдер печати отклонил задание
	ErrFulfillment = errors.New("fulfillment failed")

	// ErrSignature подпись вебхука не прошла проверку
	ErrSignature = errors.New("webhook signature verification failed")

	// ErrInvalidTransition недопустимый переход статуса заказа
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrPaymentNotCompleted сессия оплаты еще не оплачена
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// FieldError описывает ошибку одного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors представляет набор ошибок валидации
type ValidationErrors []FieldError

// Error реализует интерфейс error
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
	}

	return fmt.Sprintf("validation failed: %d errors", len(e))
}

// Is позволяет сравнивать с ErrValidation
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add добавляет ошибку валидации
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// HasErrors проверяет наличие ошибок
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields возвращает список полей с ошибками
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// ValidationError отсутствует или неверно заполнено обязательное поле.
// Обнаруживается до любых побочных эффектов.
type ValidationError struct {
	OrderID string
	Errors  ValidationErrors
}

// Error реализует интерфейс error
func (e *ValidationError) Error() string {
	if e.OrderID == "" {
		return e.Errors.Error()
	}
	return fmt.Sprintf("%s (order_id: %s)", e.Errors.Error(), e.OrderID)
}

// Is проверяет, является ли ошибка ошибкой валидации
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError создает ошибку валидации для одного поля
func NewValidationError(orderID, field, message string) *ValidationError {
	return &ValidationError{
		OrderID: orderID,
		Errors:  ValidationErrors{{Field: field, Message: message}},
	}
}

// AuthenticationError обмен учетных данных с провайдером не удался
type AuthenticationError struct {
	Provider    string
	OrderID     string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v (order_id: %s)", e.Provider, e.OriginalErr, e.OrderID)
}

// Unwrap возвращает оригинальную ошибку
func (e *AuthenticationError) Unwrap() error {
	return e.OriginalErr
}

// Is проверяет, является ли ошибка ошибкой аутентификации
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// UnsupportedFormatError формат не входит в известный набор
type UnsupportedFormatError struct {
	Format ProductFormat
}

// Error реализует интерфейс error
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Format)
}

// Is проверяет, является ли ошибка ошибкой формата
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// FulfillmentError провайдер отклонил задание печати или вызов не завершился.
// StatusCode равен 0, если ответ не был получен.
type FulfillmentError struct {
	Provider    string
	OrderID     string
	StatusCode  int
	Body        string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *FulfillmentError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s fulfillment error: %v (order_id: %s)", e.Provider, e.OriginalErr, e.OrderID)
	}
	return fmt.Sprintf("%s fulfillment error [%d]: %s (order_id: %s)", e.Provider, e.StatusCode, e.Body, e.OrderID)
}

// Unwrap возвращает оригинальную ошибку
func (e *FulfillmentError) Unwrap() error {
	return e.OriginalErr
}

// Is проверяет, является ли ошибка ошибкой исполнения
func (e *FulfillmentError) Is(target error) bool {
	return target == ErrFulfillment
}

// SignatureVerificationError подпись входящего вебхука не совпала
type SignatureVerificationError struct {
	OriginalErr error
}

// Error реализует интерфейс error
func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("webhook signature verification failed: %v", e.OriginalErr)
}

// Unwrap возвращает оригинальную ошибку
func (e *SignatureVerificationError) Unwrap() error {
	return e.OriginalErr
}

// Is проверяет, является ли ошибка ошибкой подписи
func (e *SignatureVerificationError) Is(target error) bool {
	return target == ErrSignature
}

// NotFoundError представляет ошибку "не найдено"
type NotFoundError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}
