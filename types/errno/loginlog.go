package errno

import "github.com/wenfa-tech/grammar-core-api/pkg/errorx/code"

const (
	ErrLoginHistory   = 100_100_001
	ErrLoginStatistic = 100_100_002
	ErrDetectAnomaly  = 100_100_003
	ErrPurgeLog       = 100_100_004
)

func init() {
	code.Register(
		ErrLoginHistory,
		"获取登录历史失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrLoginStatistic,
		"获取登录统计失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrDetectAnomaly,
		"检测异常登录失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ErrPurgeLog,
		"清理过期日志失败",
		code.WithAffectStability(false),
	)
}
