package push

import (
	"errors"
	"fmt"
)

// ErrInvalidToken - токен устройства недействителен или отозван, повторять отправку нельзя
var ErrInvalidToken = errors.New("push: invalid or unregistered device token")

// Коды ошибок FCM, означающие постоянную недействительность токена
var permanentCodes = map[string]bool{
	"NotRegistered":       true,
	"InvalidRegistration": true,
	"MissingRegistration": true,
}

// SendError - типизированная ошибка доставки
type SendError struct {
	Code       string
	StatusCode int
	Permanent  bool
	Message    string
}

func (e *SendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("push: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("push: %s (status %d)", e.Code, e.StatusCode)
}

// Is позволяет сопоставлять постоянные ошибки с ErrInvalidToken через errors.Is
func (e *SendError) Is(target error) bool {
	return e.Permanent && target == ErrInvalidToken
}

// IsPermanent сообщает, что ошибка указывает на недействительный токен
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// ErrorCode возвращает код ошибки доставки или "unknown"
func ErrorCode(err error) string {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Code
	}
	return "unknown"
}

func newResultError(code string) *SendError {
	return &SendError{
		Code:       code,
		StatusCode: 200,
		Permanent:  permanentCodes[code],
	}
}
