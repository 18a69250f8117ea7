package errno

import "github.com/wenfa-tech/grammar-core-api/pkg/errorx/code"

const (
	ErrMissingCredential  = 100_000_001
	ErrBackendRejected    = 100_000_002
	ErrNetworkUnavailable = 100_000_003
	ErrNotLoggedIn        = 100_000_004
	ErrStorageFailure     = 100_000_005
	ErrTimeout            = 100_000_006
	ErrUpdateUserField    = 100_000_007
	ErrGetProfile         = 100_000_008
)

func init() {
	code.Register(
		ErrMissingCredential,
		"缺少登录凭证",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrBackendRejected,
		"微信登录验证失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrNetworkUnavailable,
		"网络异常, 请重试",
		code.WithAffectStability(true),
	)
	code.Register(
		ErrNotLoggedIn,
		"用户未登录",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrStorageFailure,
		"会话存储失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ErrTimeout,
		"登录状态检查超时",
		code.WithAffectStability(true),
	)
	code.Register(
		ErrUpdateUserField,
		"更新用户信息失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrGetProfile,
		"获取用户信息失败",
		code.WithAffectStability(false),
	)
}
