// Package errors 定义查询引擎的错误分类
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 按键请求的单个必需实体不存在
	ErrNotFound = errors.New("记录不存在")

	// ErrInvalidFilterKey 过滤键不在查询类型的白名单内；仅用于日志，不会使请求失败
	ErrInvalidFilterKey = errors.New("无效的过滤键")
)

// ValidationError 过滤值无法转换为查询所需的类型，需作为请求级失败返回调用方
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// NewValidationError 创建 ValidationError
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("参数 %s 校验失败: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("参数 %s 的值 %q 校验失败: %s", e.Field, e.Value, e.Reason)
}

// IsValidation 判断错误链中是否包含 ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidKeysError 记录被丢弃的过滤键，Unwrap 为 ErrInvalidFilterKey
type InvalidKeysError struct {
	QueryType string
	Keys      []string
}

func (e *InvalidKeysError) Error() string {
	return fmt.Sprintf("%s 查询忽略了无效的过滤键: %v", e.QueryType, e.Keys)
}

func (e *InvalidKeysError) Unwrap() error { return ErrInvalidFilterKey }
