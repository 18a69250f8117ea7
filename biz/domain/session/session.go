package session

import (
	"time"

	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
)

// Status 登录状态
type Status string

const (
	StatusLoggedOut Status = cst.StatusLoggedOut
	StatusGuest     Status = cst.StatusGuest
	StatusWechat    Status = cst.StatusWechat
)

// User 会话中的用户信息
type User struct {
	Id            string    `json:"id"`
	OpenId        string    `json:"openid,omitempty"`   // 仅微信登录存在
	UnionId       string    `json:"union_id,omitempty"` // 仅微信登录存在
	Nickname      string    `json:"nickname"`
	Avatar        string    `json:"avatar"`
	Gender        int32     `json:"gender"`
	Country       string    `json:"country"`
	Province      string    `json:"province"`
	City          string    `json:"city"`
	Language      string    `json:"language"`
	IsGuest       bool      `json:"is_guest"`
	LoginCount    int64     `json:"login_count"`
	LastLoginTime time.Time `json:"last_login_time"`
	CreateTime    time.Time `json:"create_time"`
}

// Credential 微信登录凭证, Profile可选
type Credential struct {
	Code    string   `json:"code"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile 客户端授权携带的微信用户信息
type Profile struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Gender   int32  `json:"gender"`
	Country  string `json:"country"`
	Province string `json:"province"`
	City     string `json:"city"`
	Language string `json:"language"`
}

// VerifyResult 认证后端校验结果
type VerifyResult struct {
	User  *User
	Token string
}

// updatableFields 资料更新允许写入的字段
// 未知字段静默丢弃, 兼容前端新版本多传的字段
var updatableFields = map[string]struct{}{
	cst.Nickname: {},
	cst.Gender:   {},
	cst.Country:  {},
	cst.Province: {},
	cst.City:     {},
	cst.Language: {},
	cst.Avatar:   {},
}

// FilterUpdatableFields 按允许列表过滤资料更新字段
func FilterUpdatableFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, ok := updatableFields[k]; ok {
			filtered[k] = v
		}
	}
	return filtered
}

// applyFields 将过滤后的字段合并进用户
func applyFields(u *User, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case cst.Nickname:
			if s, ok := v.(string); ok {
				u.Nickname = s
			}
		case cst.Avatar:
			if s, ok := v.(string); ok {
				u.Avatar = s
			}
		case cst.Gender:
			switch g := v.(type) {
			case int32:
				u.Gender = g
			case int:
				u.Gender = int32(g)
			case int64:
				u.Gender = int32(g)
			case float64: // json反序列化的数字
				u.Gender = int32(g)
			}
		case cst.Country:
			if s, ok := v.(string); ok {
				u.Country = s
			}
		case cst.Province:
			if s, ok := v.(string); ok {
				u.Province = s
			}
		case cst.City:
			if s, ok := v.(string); ok {
				u.City = s
			}
		case cst.Language:
			if s, ok := v.(string); ok {
				u.Language = s
			}
		}
	}
}
