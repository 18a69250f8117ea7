package errorx

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/wenfa-tech/grammar-core-api/pkg/errorx/code"
)

// errorx 是携带业务错误码的错误类型
// 错误码及默认文案在 types/errno 中通过 code.Register 注册
// 最佳实践:
// - 业务处理链路的末端使用 errorx, PostProcess 处理后给出用户友好的响应
// - 其余位置的 error 照常用 %w 传递

// StatusError 业务错误接口
type StatusError interface {
	error
	Code() int32
	Msg() string
}

type statusError struct {
	code  int32
	msg   string
	extra map[string]string
	cause error
	stack string
}

type Option func(*statusError)

// KV 附加上下文键值对, 仅用于日志排查, 不透出给前端
func KV(k, v string) Option {
	return func(e *statusError) {
		if e.extra == nil {
			e.extra = make(map[string]string)
		}
		e.extra[k] = v
	}
}

// KVf 格式化附加键值对
func KVf(k, format string, a ...any) Option {
	return KV(k, fmt.Sprintf(format, a...))
}

func newStatusError(c int32, opts ...Option) *statusError {
	msg := "unknown error"
	if d, ok := code.Find(c); ok {
		msg = d.Message
	}
	e := &statusError{code: c, msg: msg, stack: string(debug.Stack())}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New 根据注册的错误码创建业务错误
func New(c int32, opts ...Option) error {
	return newStatusError(c, opts...)
}

// WrapByCode 将底层错误包装为业务错误, 保留原错误链
func WrapByCode(err error, c int32, opts ...Option) error {
	if err == nil {
		return nil
	}
	e := newStatusError(c, opts...)
	e.cause = err
	return e
}

func (e *statusError) Code() int32 { return e.code }

func (e *statusError) Msg() string { return e.msg }

func (e *statusError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("code=%d, msg=%s", e.code, e.msg))
	for k, v := range e.extra {
		sb.WriteString(fmt.Sprintf(", %s=%s", k, v))
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *statusError) Unwrap() error { return e.cause }

// Is 支持 errors.Is 按错误码匹配
func (e *statusError) Is(target error) bool {
	var se StatusError
	if errors.As(target, &se) {
		return se.Code() == e.code
	}
	return false
}

// CodeOf 提取错误链中的业务错误码, 无则返回0
func CodeOf(err error) int32 {
	var se StatusError
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

// ErrorWithoutStack 返回不含堆栈的错误串, 用于日志
func ErrorWithoutStack(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
