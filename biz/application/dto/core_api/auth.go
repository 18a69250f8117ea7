package core_api

import (
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/basic"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/guard"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/session"
)

// WechatLoginReq 微信登录, code为jscode2session凭证, user_info可选
type WechatLoginReq struct {
	Code     string           `json:"code"`
	UserInfo *session.Profile `json:"user_info,omitempty"`
}

type WechatLoginResp struct {
	Resp     *basic.Response
	UserInfo *session.User `json:"user_info"`
	Token    string        `json:"token"`
	OpenId   string        `json:"open_id"`
}

type GuestLoginReq struct{}

type GuestLoginResp struct {
	Resp     *basic.Response
	UserInfo *session.User `json:"user_info"`
}

type LogoutReq struct{}

type LogoutResp struct {
	Resp *basic.Response
}

type CheckSessionReq struct{}

type CheckSessionResp struct {
	Resp     *basic.Response
	LoggedIn bool   `json:"logged_in"`
	Status   string `json:"status"`
}

type GetProfileReq struct{}

type GetProfileResp struct {
	Resp     *basic.Response
	UserInfo *session.User `json:"user_info"`
}

// UpdateProfileReq 资料更新, 仅允许列表内的字段生效
type UpdateProfileReq struct {
	Fields map[string]any `json:"fields"`
}

type UpdateProfileResp struct {
	Resp     *basic.Response
	UserInfo *session.User  `json:"user_info"`
	Updated  map[string]any `json:"updated"`
}

// CheckAccessReq 页面访问判定
type CheckAccessReq struct {
	PagePath string `json:"page_path"`
}

type CheckAccessResp struct {
	Resp     *basic.Response
	Decision *guard.Decision `json:"decision"`
}

// ResumeReq 登录成功后取回待访问页面
type ResumeReq struct{}

type ResumeResp struct {
	Resp     *basic.Response
	Decision *guard.Decision `json:"decision"`
}
