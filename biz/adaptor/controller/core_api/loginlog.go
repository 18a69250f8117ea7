package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/wenfa-tech/grammar-core-api/biz/adaptor"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/core_api"
	"github.com/wenfa-tech/grammar-core-api/provider"
)

// LoginHistory 用户登录历史
// @router /login_log/history [GET]
func LoginHistory(ctx context.Context, c *app.RequestContext) {
	var req core_api.LoginHistoryReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().LoginLogService.History(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// LoginStatistics 登录统计
// @router /login_log/statistics [GET]
func LoginStatistics(ctx context.Context, c *app.RequestContext) {
	var req core_api.LoginStatisticsReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().LoginLogService.Statistics(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// DetectAnomalies 异常登录检测
// @router /login_log/anomalies [GET]
func DetectAnomalies(ctx context.Context, c *app.RequestContext) {
	var req core_api.DetectAnomalyReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().LoginLogService.DetectAnomalies(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// PurgeLogs 清理过期日志
// @router /login_log/purge [POST]
func PurgeLogs(ctx context.Context, c *app.RequestContext) {
	var req core_api.PurgeLogsReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().LoginLogService.Purge(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
