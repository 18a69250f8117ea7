package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/wenfa-tech/grammar-core-api/biz/adaptor"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/core_api"
	"github.com/wenfa-tech/grammar-core-api/provider"
)

// WechatLogin 微信登录
// @router /auth/wechat_login [POST]
func WechatLogin(ctx context.Context, c *app.RequestContext) {
	var req core_api.WechatLoginReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.WechatLogin(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// GuestLogin 游客模式
// @router /auth/guest_login [POST]
func GuestLogin(ctx context.Context, c *app.RequestContext) {
	var req core_api.GuestLoginReq
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.GuestLogin(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Logout 退出登录
// @router /auth/logout [POST]
func Logout(ctx context.Context, c *app.RequestContext) {
	var req core_api.LogoutReq
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.Logout(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// CheckSession 登录状态检查
// @router /auth/check_session [GET]
func CheckSession(ctx context.Context, c *app.RequestContext) {
	var req core_api.CheckSessionReq
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.CheckSession(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// GetProfile 获取用户信息
// @router /user/profile [GET]
func GetProfile(ctx context.Context, c *app.RequestContext) {
	var req core_api.GetProfileReq
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.GetProfile(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// UpdateProfile 更新用户信息
// @router /user/update_profile [POST]
func UpdateProfile(ctx context.Context, c *app.RequestContext) {
	var req core_api.UpdateProfileReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.UpdateProfile(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// CheckAccess 页面访问判定
// @router /auth/check_access [POST]
func CheckAccess(ctx context.Context, c *app.RequestContext) {
	var req core_api.CheckAccessReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.CheckAccess(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Resume 登录成功后取回待访问页面
// @router /auth/resume [POST]
func Resume(ctx context.Context, c *app.RequestContext) {
	var req core_api.ResumeReq
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().AuthService.Resume(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
