package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/wenfa-tech/grammar-core-api/biz/adaptor"
	"github.com/wenfa-tech/grammar-core-api/biz/adaptor/controller/core_api"
	dto "github.com/wenfa-tech/grammar-core-api/biz/application/dto/core_api"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/provider"
	"github.com/wenfa-tech/grammar-core-api/types/errno"
)

// requireSession 受保护路由组的会话校验
func requireSession() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		ctx = adaptor.InjectContext(ctx, c)
		resp, err := provider.Get().AuthService.CheckSession(ctx, &dto.CheckSessionReq{})
		if err != nil || !resp.LoggedIn {
			adaptor.PostError(ctx, c, errorx.New(errno.ErrNotLoggedIn))
			return
		}
		c.Next(ctx)
	}
}

// Register 注册全部路由
func Register(h *server.Hertz) {
	auth := h.Group("/auth")
	auth.POST("/wechat_login", core_api.WechatLogin)
	auth.POST("/guest_login", core_api.GuestLogin)
	auth.POST("/logout", core_api.Logout)
	auth.GET("/check_session", core_api.CheckSession)
	auth.POST("/check_access", core_api.CheckAccess)
	auth.POST("/resume", core_api.Resume)

	user := h.Group("/user", requireSession())
	user.GET("/profile", core_api.GetProfile)
	user.POST("/update_profile", core_api.UpdateProfile)

	log := h.Group("/login_log")
	log.GET("/history", core_api.LoginHistory)
	log.GET("/statistics", core_api.LoginStatistics)
	log.GET("/anomalies", core_api.DetectAnomalies)
	log.POST("/purge", core_api.PurgeLogs)
}
