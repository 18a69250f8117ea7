package code

import "sync"

// code 维护业务错误码的注册表
// 各 types/errno 包在 init 中注册错误码与默认文案
// 最佳实践:
// - 错误码全局唯一, 按业务域分段
// - AffectStability 标记该错误是否计入服务稳定性

type Option func(*Definition)

// Definition 一个已注册的错误码定义
type Definition struct {
	Code            int32
	Message         string
	AffectStability bool
}

var (
	mu       sync.RWMutex
	registry = make(map[int32]*Definition)
)

// WithAffectStability 标记错误是否影响服务稳定性
func WithAffectStability(affect bool) Option {
	return func(d *Definition) {
		d.AffectStability = affect
	}
}

// Register 注册错误码, 重复注册时后者覆盖前者
func Register(code int32, msg string, opts ...Option) {
	d := &Definition{Code: code, Message: msg, AffectStability: true}
	for _, opt := range opts {
		opt(d)
	}
	mu.Lock()
	registry[code] = d
	mu.Unlock()
}

// Find 查找错误码定义
func Find(code int32) (*Definition, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := registry[code]
	return d, ok
}
