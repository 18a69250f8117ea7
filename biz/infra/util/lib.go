package util

import (
	"github.com/bytedance/sonic"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/basic"
)

// Success 返回成功的basic.Response指针
func Success() *basic.Response {
	return &basic.Response{
		Code: 200,
		Msg:  "success",
	}
}

// JSONF 序列化为字符串, 仅用于日志
func JSONF(v any) string {
	s, err := sonic.MarshalString(v)
	if err != nil {
		return ""
	}
	return s
}
