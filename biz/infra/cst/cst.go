package cst

// 登录状态枚举值
const (
	StatusLoggedOut = "logged_out"
	StatusGuest     = "guest"
	StatusWechat    = "wechat"
)

// 客户端平台标识
const (
	PlatformWechatMiniProgram = "wechat_miniprogram"
	LoginMethodWechatCode     = "wechat_code"
	LoginMethodGuest          = "guest_local"
	LoginSourceMiniProgram    = "miniprogram"
)

// 会话存储键, 按客户端维度拼接前缀
const (
	KeyLoginStatus   = "loginStatus"
	KeyUserInfo      = "userInfo"
	KeyLoginTime     = "loginTime"
	KeySessionExpire = "sessionExpireAt"
	KeyWechatToken   = "wechatToken"
	KeyPendingPage   = "pendingPage"
)

// mapper层字段枚举
const (
	Id            = "_id"
	OpenId        = "openid"
	UserId        = "user_id"
	Nickname      = "nickname"
	Avatar        = "avatar"
	Gender        = "gender"
	Country       = "country"
	Province      = "province"
	City          = "city"
	Language      = "language"
	CreateTime    = "create_time"
	UpdateTime    = "update_time"
	LastLoginTime = "last_login_time"
	LoginCount    = "login_count"
	LoginTime     = "login_time"
	Success       = "success"
	Ip            = "ip"

	Set         = "$set"
	SetOnInsert = "$setOnInsert"
	Inc         = "$inc"
	GTE         = "$gte"
	LT          = "$lt"
	NE          = "$ne"
)
