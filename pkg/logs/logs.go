package logs

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// logs 统一日志入口, 底层为 go-zero logx
// Ctx 系列会携带 ctx 中的链路信息

func CtxInfof(ctx context.Context, format string, a ...any) {
	logx.WithContext(ctx).Infof(format, a...)
}

// CtxWarnf logx没有warn级别, 记为error
func CtxWarnf(ctx context.Context, format string, a ...any) {
	logx.WithContext(ctx).Errorf(format, a...)
}

func CtxErrorf(ctx context.Context, format string, a ...any) {
	logx.WithContext(ctx).Errorf(format, a...)
}

func Infof(format string, a ...any) {
	logx.Infof(format, a...)
}

func Error(a ...any) {
	logx.Error(a...)
}

func Errorf(format string, a ...any) {
	logx.Errorf(format, a...)
}
