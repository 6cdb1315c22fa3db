package lib

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("not found")
	// ErrMediaUnavailable 签名 URL 刷新一次后仍无法加载
	ErrMediaUnavailable = errors.New("Archivo no disponible")
	// ErrNotLoggedIn 本地没有会话
	ErrNotLoggedIn = errors.New("no has iniciado sesión")
)

// StepError 包含步骤信息的错误类型
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s] %v", e.Step, e.Err)
	}
	return e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// WithStep 为错误添加步骤信息
func WithStep(step string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{
		Step: step,
		Err:  err,
	}
}

// GetStep 从错误中提取步骤信息
func GetStep(err error) string {
	if err == nil {
		return ""
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}

// ValidationError 本地字段校验失败，不会发送到任何远端
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func NewFieldError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthError 登录/注册被远端拒绝
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func NewAuthError(message string, cause error) error {
	return &AuthError{Message: message, Err: cause}
}

// ModerationError 分类器调用失败，按拒绝处理
type ModerationError struct {
	File string
	Err  error
}

func (e *ModerationError) Error() string {
	return fmt.Sprintf("%s: no se pudo analizar la imagen: %v", e.File, e.Err)
}

func (e *ModerationError) Unwrap() error {
	return e.Err
}

// PlatformError 数据平台返回的错误
type PlatformError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *PlatformError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected http status code: %d", e.StatusCode)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// IsCode 判断错误是否为指定错误码的平台错误
func IsCode(err error, code string) bool {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
