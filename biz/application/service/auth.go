package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/wire"
	"github.com/wenfa-tech/grammar-core-api/biz/adaptor"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/core_api"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/guard"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/session"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/loginlog"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/user"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/storage"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/util"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/util/httpx"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/pkg/logs"
	"github.com/wenfa-tech/grammar-core-api/pkg/safego"
	"github.com/wenfa-tech/grammar-core-api/types/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type IAuthService interface {
	WechatLogin(ctx context.Context, req *core_api.WechatLoginReq) (*core_api.WechatLoginResp, error)
	GuestLogin(ctx context.Context, req *core_api.GuestLoginReq) (*core_api.GuestLoginResp, error)
	Logout(ctx context.Context, req *core_api.LogoutReq) (*core_api.LogoutResp, error)
	CheckSession(ctx context.Context, req *core_api.CheckSessionReq) (*core_api.CheckSessionResp, error)
	GetProfile(ctx context.Context, req *core_api.GetProfileReq) (*core_api.GetProfileResp, error)
	UpdateProfile(ctx context.Context, req *core_api.UpdateProfileReq) (*core_api.UpdateProfileResp, error)
	CheckAccess(ctx context.Context, req *core_api.CheckAccessReq) (*core_api.CheckAccessResp, error)
	Resume(ctx context.Context, req *core_api.ResumeReq) (*core_api.ResumeResp, error)
}

type AuthService struct {
	Config     *config.Config
	UserMapper user.MongoMapper
	LogMapper  loginlog.MongoMapper
	Store      storage.KV

	mu       sync.Mutex
	managers map[string]*session.Manager
}

var AuthServiceSet = wire.NewSet(
	wire.Struct(new(AuthService), "Config", "UserMapper", "LogMapper", "Store"),
	wire.Bind(new(IAuthService), new(*AuthService)),
	wire.Bind(new(session.Verifier), new(*AuthService)),
)

// manager 取得指定客户端的会话管理器, 惰性创建
func (s *AuthService) manager(clientId string) *session.Manager {
	if clientId == "" {
		clientId = "anonymous"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.managers == nil {
		s.managers = make(map[string]*session.Manager)
	}
	if m, ok := s.managers[clientId]; ok {
		return m
	}
	m := session.NewManager(clientId, s.Store, s,
		session.WithDuration(time.Duration(s.Config.Session.DurationDays)*24*time.Hour),
		session.WithCheckTimeout(time.Duration(s.Config.Session.CheckTimeoutMs)*time.Millisecond))
	s.managers[clientId] = m
	return m
}

// code2SessionResp 微信jscode2session响应
type code2SessionResp struct {
	OpenId     string `json:"openid"`
	UnionId    string `json:"unionid"`
	SessionKey string `json:"session_key"`
	ErrCode    int32  `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// VerifyWechat 校验微信凭证并落库用户, 实现session.Verifier
func (s *AuthService) VerifyWechat(ctx context.Context, cred *session.Credential) (*session.VerifyResult, error) {
	c := s.Config
	url := httpx.WithQuery(c.Wechat.Code2SessionURL, map[string]string{
		"appid":      c.Wechat.AppID,
		"secret":     c.Wechat.AppSecret,
		"js_code":    cred.Code,
		"grant_type": "authorization_code",
	})
	resp, err := httpx.Get[code2SessionResp](ctx, url, nil, nil)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrNetworkUnavailable, errorx.KV("url", c.Wechat.Code2SessionURL))
	}
	if resp.ErrCode != 0 || resp.OpenId == "" {
		return nil, errorx.New(errno.ErrBackendRejected, errorx.KVf("errcode", "%d", resp.ErrCode), errorx.KV("errmsg", resp.ErrMsg))
	}

	var p *user.Profile
	if cred.Profile != nil {
		p = &user.Profile{
			Nickname: cred.Profile.Nickname,
			Avatar:   cred.Profile.Avatar,
			Gender:   cred.Profile.Gender,
			Country:  cred.Profile.Country,
			Province: cred.Profile.Province,
			City:     cred.Profile.City,
			Language: cred.Profile.Language,
		}
	}
	u, err := s.UserMapper.FindOrCreateByOpenId(ctx, resp.OpenId, resp.UnionId, p)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrStorageFailure)
	}
	token, err := s.issueToken(u.ID.Hex())
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrBackendRejected)
	}
	return &session.VerifyResult{User: toSessionUser(u), Token: token}, nil
}

// issueToken 签发HS256会话令牌
func (s *AuthService) issueToken(userId string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userId,
		"iat":    now.Unix(),
		"exp":    now.Add(time.Duration(s.Config.Auth.AccessExpire) * time.Second).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.Auth.SecretKey))
}

func toSessionUser(u *user.User) *session.User {
	return &session.User{
		Id:            u.ID.Hex(),
		OpenId:        u.OpenId,
		UnionId:       u.UnionId,
		Nickname:      u.Nickname,
		Avatar:        u.Avatar,
		Gender:        u.Gender,
		Country:       u.Country,
		Province:      u.Province,
		City:          u.City,
		Language:      u.Language,
		IsGuest:       u.IsGuest,
		LoginCount:    u.LoginCount,
		LastLoginTime: u.LastLoginTime,
		CreateTime:    u.CreateTime,
	}
}

func (s *AuthService) WechatLogin(ctx context.Context, req *core_api.WechatLoginReq) (*core_api.WechatLoginResp, error) {
	mgr := s.manager(adaptor.ExtractClientId(ctx))
	cred := &session.Credential{Code: req.Code, Profile: req.UserInfo}
	u, token, err := mgr.LoginWithWechat(ctx, cred)
	if err != nil {
		s.recordLogin(ctx, "", "", cst.LoginMethodWechatCode, false, errorx.ErrorWithoutStack(err))
		return nil, err
	}
	s.recordLogin(ctx, u.Id, u.OpenId, cst.LoginMethodWechatCode, true, "")
	return &core_api.WechatLoginResp{
		Resp:     util.Success(),
		UserInfo: u,
		Token:    token,
		OpenId:   u.OpenId,
	}, nil
}

func (s *AuthService) GuestLogin(ctx context.Context, req *core_api.GuestLoginReq) (*core_api.GuestLoginResp, error) {
	mgr := s.manager(adaptor.ExtractClientId(ctx))
	u, err := mgr.LoginAsGuest(ctx)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, u.Id, "", cst.LoginMethodGuest, true, "")
	return &core_api.GuestLoginResp{
		Resp:     util.Success(),
		UserInfo: u,
	}, nil
}

// Logout 登出永远返回成功, 存储清理尽力而为
func (s *AuthService) Logout(ctx context.Context, req *core_api.LogoutReq) (*core_api.LogoutResp, error) {
	mgr := s.manager(adaptor.ExtractClientId(ctx))
	mgr.Logout(ctx)
	return &core_api.LogoutResp{Resp: util.Success()}, nil
}

func (s *AuthService) CheckSession(ctx context.Context, req *core_api.CheckSessionReq) (*core_api.CheckSessionResp, error) {
	mgr := s.manager(adaptor.ExtractClientId(ctx))
	loggedIn := mgr.CheckLoginStatus(ctx)
	return &core_api.CheckSessionResp{
		Resp:     util.Success(),
		LoggedIn: loggedIn,
		Status:   string(mgr.GetStatus()),
	}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, req *core_api.GetProfileReq) (*core_api.GetProfileResp, error) {
	mgr := s.manager(adaptor.ExtractClientId(ctx))
	if !mgr.CheckLoginStatus(ctx) {
		return nil, errorx.New(errno.ErrNotLoggedIn)
	}
	u := mgr.GetCurrentUser()
	if u == nil {
		return nil, errorx.New(errno.ErrNotLoggedIn)
	}
	return &core_api.GetProfileResp{Resp: util.Success(), UserInfo: u}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, req *core_api.UpdateProfileReq) (*core_api.UpdateProfileResp, error) {
	mgr := s.manager(adaptor.ExtractClientId(ctx))
	updated, u, err := mgr.UpdateUserInfo(ctx, req.Fields)
	if err != nil {
		return nil, err
	}
	// 微信用户写回用户表, 游客仅存在于会话存储
	if !u.IsGuest && len(updated) > 0 {
		oid, oerr := primitive.ObjectIDFromHex(u.Id)
		if oerr != nil {
			return nil, errorx.WrapByCode(oerr, errno.OIDErrCode)
		}
		if oerr = s.UserMapper.UpdateField(ctx, oid, bson.M(updated)); oerr != nil {
			return nil, errorx.WrapByCode(oerr, errno.ErrUpdateUserField)
		}
	}
	return &core_api.UpdateProfileResp{
		Resp:     util.Success(),
		UserInfo: u,
		Updated:  updated,
	}, nil
}

func (s *AuthService) CheckAccess(ctx context.Context, req *core_api.CheckAccessReq) (*core_api.CheckAccessResp, error) {
	clientId := adaptor.ExtractClientId(ctx)
	mgr := s.manager(clientId)
	g := guard.New(clientId, s.Store, mgr.CheckLoginStatus)
	d := g.CheckAccess(ctx, req.PagePath)
	return &core_api.CheckAccessResp{Resp: util.Success(), Decision: &d}, nil
}

func (s *AuthService) Resume(ctx context.Context, req *core_api.ResumeReq) (*core_api.ResumeResp, error) {
	clientId := adaptor.ExtractClientId(ctx)
	mgr := s.manager(clientId)
	g := guard.New(clientId, s.Store, mgr.CheckLoginStatus)
	d := g.ConsumePending(ctx)
	return &core_api.ResumeResp{Resp: util.Success(), Decision: &d}, nil
}

// recordLogin 记录登录日志, 失败只记日志, 绝不阻断登录主流程
func (s *AuthService) recordLogin(ctx context.Context, userId, openid, method string, success bool, errMsg string) {
	entry := &loginlog.LoginLog{
		UserId:       userId,
		OpenId:       openid,
		LoginTime:    time.Now(),
		Platform:     cst.PlatformWechatMiniProgram,
		Success:      success,
		ErrorMessage: errMsg,
		Context: &loginlog.Context{
			LoginMethod: method,
			LoginSource: cst.LoginSourceMiniProgram,
		},
	}
	if c, err := adaptor.ExtractContext(ctx); err == nil {
		entry.Ip = c.ClientIP()
		entry.UserAgent = string(c.UserAgent())
	}
	bg := context.WithoutCancel(ctx)
	safego.Go(bg, func() {
		if err := s.LogMapper.Insert(bg, entry); err != nil {
			logs.CtxErrorf(bg, "[auth] 记录登录日志失败: %s", errorx.ErrorWithoutStack(err))
		}
	})
}
