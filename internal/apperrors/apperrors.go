// Package apperrors 定义业务错误分类，handler 层据此映射 HTTP 状态码
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation 字段缺失或非法（空 tier 名、非图片上传等）
	ErrValidation = errors.New("validation error")
	// ErrPolicyViolation 违反业务规则（为禁用缩略图的 tier 添加尺寸等）
	ErrPolicyViolation = errors.New("policy violation")
	// ErrForbidden 已认证但 tier 能力不足
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated 未认证
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound 资源不存在或链接解码失败
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameter 参数越界或格式错误
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Validationf 构造带上下文的校验错误
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// PolicyViolationf 构造带上下文的业务规则错误
func PolicyViolationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPolicyViolation, fmt.Sprintf(format, args...))
}

// Forbiddenf 构造带上下文的权限错误
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// NotFoundf 构造带上下文的资源缺失错误
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidParameterf 构造带上下文的参数错误
func InvalidParameterf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// HTTPStatus 将业务错误映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrPolicyViolation), errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
