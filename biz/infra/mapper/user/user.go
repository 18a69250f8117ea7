package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 性别枚举, 与微信用户信息保持一致
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// User 用户
type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`                  // ID
	OpenId        string             `json:"openid" bson:"openid,omitempty"`           // 微信openid
	UnionId       string             `json:"union_id" bson:"union_id,omitempty"`       // 微信unionid
	Nickname      string             `json:"nickname" bson:"nickname,omitempty"`       // 昵称
	Avatar        string             `json:"avatar" bson:"avatar,omitempty"`           // 头像
	Gender        int32              `json:"gender" bson:"gender"`                     // 性别
	Country       string             `json:"country" bson:"country,omitempty"`         // 国家
	Province      string             `json:"province" bson:"province,omitempty"`       // 省份
	City          string             `json:"city" bson:"city,omitempty"`               // 城市
	Language      string             `json:"language" bson:"language,omitempty"`       // 语言
	IsGuest       bool               `json:"is_guest" bson:"is_guest"`                 // 是否游客
	LoginCount    int64              `json:"login_count" bson:"login_count"`           // 累计登录次数
	LastLoginTime time.Time          `json:"last_login_time" bson:"last_login_time"`   // 最近登录时间
	CreateTime    time.Time          `json:"create_time" bson:"create_time"`
	UpdateTime    time.Time          `json:"update_time" bson:"update_time"`
}
