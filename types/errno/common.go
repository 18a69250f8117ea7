package errno

import (
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx/code"
)

const (
	UnAuthErrCode      = 1000
	UnImplementErrCode = 888
	OIDErrCode         = 777
)

func init() {
	code.Register(
		UnAuthErrCode,
		"身份认证失败",
		code.WithAffectStability(false),
	)
	code.Register(
		UnImplementErrCode,
		"功能暂未实现",
		code.WithAffectStability(true),
	)
	code.Register(
		OIDErrCode,
		"非法的用户ID",
		code.WithAffectStability(false),
	)
}
