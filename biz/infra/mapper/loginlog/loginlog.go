package loginlog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context 登录发生时的上下文信息
type Context struct {
	DeviceInfo  map[string]string `json:"device_info" bson:"device_info,omitempty"` // 设备信息
	LoginMethod string            `json:"login_method" bson:"login_method"`         // 登录方式
	LoginSource string            `json:"login_source" bson:"login_source"`         // 登录来源
}

// LoginLog 登录日志, 只追加不修改
type LoginLog struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserId       string             `json:"user_id" bson:"user_id,omitempty"` // 登录失败未解析到用户时为空
	OpenId       string             `json:"openid" bson:"openid,omitempty"`
	LoginTime    time.Time          `json:"login_time" bson:"login_time"`
	Ip           string             `json:"ip" bson:"ip,omitempty"`
	UserAgent    string             `json:"user_agent" bson:"user_agent,omitempty"`
	Platform     string             `json:"platform" bson:"platform"` // 客户端平台标识
	Success      bool               `json:"success" bson:"success"`
	ErrorMessage string             `json:"error_message" bson:"error_message,omitempty"` // 成功时为空
	Context      *Context           `json:"context" bson:"context,omitempty"`
}
