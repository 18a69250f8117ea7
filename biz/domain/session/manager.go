package session

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/storage"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/pkg/logs"
	"github.com/wenfa-tech/grammar-core-api/types/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verifier 认证后端, 负责校验微信凭证并落库用户
type Verifier interface {
	VerifyWechat(ctx context.Context, cred *Credential) (*VerifyResult, error)
}

const (
	defaultDuration     = 7 * 24 * time.Hour
	defaultCheckTimeout = 3 * time.Second
)

// Manager 会话管理器, 每个客户端一个实例
// 登录/登出/更新等写操作串行执行, 读操作只读内存
type Manager struct {
	clientId string
	store    storage.KV
	verifier Verifier

	duration     time.Duration
	checkTimeout time.Duration
	now          func() time.Time

	ops chan func() // 写操作串行化

	status    Status
	user      *User
	token     string
	issuedAt  time.Time
	expiresAt time.Time
	inited    bool

	subs    map[int]chan Status
	nextSub int
}

type Option func(*Manager)

// WithDuration 会话有效期
func WithDuration(d time.Duration) Option {
	return func(m *Manager) { m.duration = d }
}

// WithCheckTimeout 状态检查超时上限
func WithCheckTimeout(d time.Duration) Option {
	return func(m *Manager) { m.checkTimeout = d }
}

// WithClock 注入时钟, 测试用
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(clientId string, store storage.KV, verifier Verifier, opts ...Option) *Manager {
	m := &Manager{
		clientId:     clientId,
		store:        store,
		verifier:     verifier,
		duration:     defaultDuration,
		checkTimeout: defaultCheckTimeout,
		now:          time.Now,
		ops:          make(chan func()),
		status:       StatusLoggedOut,
		subs:         make(map[int]chan Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.loop()
	return m
}

// loop 依次执行写操作, 保证状态迁移不交错
func (m *Manager) loop() {
	for fn := range m.ops {
		fn()
	}
}

// Close 停止写操作循环并释放订阅
func (m *Manager) Close() {
	m.do(func() {
		for id, ch := range m.subs {
			close(ch)
			delete(m.subs, id)
		}
	})
	close(m.ops)
}

func (m *Manager) do(fn func()) {
	done := make(chan struct{})
	m.ops <- func() {
		defer close(done)
		fn()
	}
	<-done
}

func (m *Manager) key(name string) string {
	return m.clientId + ":" + name
}

// Init 从存储恢复会话, 过期则清理, 幂等
func (m *Manager) Init(ctx context.Context) error {
	var err error
	m.do(func() { err = m.initLocked(ctx) })
	return err
}

func (m *Manager) initLocked(ctx context.Context) error {
	if m.inited {
		return nil
	}
	status, ok, err := m.store.Get(ctx, m.key(cst.KeyLoginStatus))
	if err != nil {
		return errorx.WrapByCode(err, errno.ErrStorageFailure)
	}
	if !ok || Status(status) == StatusLoggedOut {
		m.resetLocked()
		m.inited = true
		return nil
	}

	userRaw, userOk, err := m.store.Get(ctx, m.key(cst.KeyUserInfo))
	if err != nil {
		return errorx.WrapByCode(err, errno.ErrStorageFailure)
	}
	issuedRaw, _, err := m.store.Get(ctx, m.key(cst.KeyLoginTime))
	if err != nil {
		return errorx.WrapByCode(err, errno.ErrStorageFailure)
	}
	issuedAt := parseMillis(issuedRaw)
	if !userOk || issuedAt.IsZero() || m.now().After(issuedAt.Add(m.duration)) {
		// 会话过期或数据残缺, 惰性清理
		logs.CtxInfof(ctx, "[session] client=%s 会话已过期, 清除登录状态", m.clientId)
		m.resetLocked()
		m.clearStoreLocked(ctx)
		m.inited = true
		return nil
	}

	var u User
	if err = sonic.UnmarshalString(userRaw, &u); err != nil {
		m.resetLocked()
		m.clearStoreLocked(ctx)
		m.inited = true
		return nil
	}
	token, _, _ := m.store.Get(ctx, m.key(cst.KeyWechatToken))

	m.status = Status(status)
	m.user = &u
	m.token = token
	m.issuedAt = issuedAt
	m.expiresAt = issuedAt.Add(m.duration)
	m.inited = true
	return nil
}

// LoginWithWechat 微信登录, 失败时状态保持不变
func (m *Manager) LoginWithWechat(ctx context.Context, cred *Credential) (*User, string, error) {
	if cred == nil || cred.Code == "" {
		return nil, "", errorx.New(errno.ErrMissingCredential)
	}
	// 网络校验在临界区外执行, 校验结果的落账串行化
	result, err := m.verifier.VerifyWechat(ctx, cred)
	if err != nil {
		return nil, "", err
	}
	var u *User
	var token string
	m.do(func() {
		if err = m.saveLocked(ctx, StatusWechat, result.User, result.Token); err != nil {
			return
		}
		u, token = m.user, m.token
	})
	return u, token, err
}

// LoginAsGuest 游客模式, 本地合成用户, 不经过认证后端
func (m *Manager) LoginAsGuest(ctx context.Context) (*User, error) {
	now := m.now()
	guest := &User{
		Id:            "guest_" + primitive.NewObjectID().Hex(),
		Nickname:      "游客用户",
		Avatar:        "",
		Language:      "zh_CN",
		IsGuest:       true,
		LoginCount:    1,
		LastLoginTime: now,
		CreateTime:    now,
	}
	var err error
	m.do(func() { err = m.saveLocked(ctx, StatusGuest, guest, "") })
	if err != nil {
		return nil, err
	}
	return guest, nil
}

// saveLocked 更新内存状态并写穿存储, 存储失败时回滚内存状态
func (m *Manager) saveLocked(ctx context.Context, status Status, u *User, token string) error {
	prevStatus, prevUser, prevToken := m.status, m.user, m.token
	prevIssued, prevExpires := m.issuedAt, m.expiresAt

	now := m.now()
	m.status = status
	m.user = u
	m.token = token
	m.issuedAt = now
	m.expiresAt = now.Add(m.duration)
	m.inited = true

	userRaw, err := sonic.MarshalString(u)
	if err == nil {
		if err = m.store.Set(ctx, m.key(cst.KeyLoginStatus), string(status)); err == nil {
			if err = m.store.Set(ctx, m.key(cst.KeyUserInfo), userRaw); err == nil {
				if err = m.store.Set(ctx, m.key(cst.KeyLoginTime), formatMillis(now)); err == nil {
					err = m.store.Set(ctx, m.key(cst.KeySessionExpire), formatMillis(m.expiresAt))
				}
			}
		}
	}
	if err == nil && token != "" {
		err = m.store.Set(ctx, m.key(cst.KeyWechatToken), token)
	}
	if err != nil {
		m.status, m.user, m.token = prevStatus, prevUser, prevToken
		m.issuedAt, m.expiresAt = prevIssued, prevExpires
		return errorx.WrapByCode(err, errno.ErrStorageFailure)
	}
	m.notifyLocked(status)
	return nil
}

// Logout 登出, 存储删除尽力而为, 单键失败只记日志
func (m *Manager) Logout(ctx context.Context) {
	m.do(func() {
		m.resetLocked()
		m.inited = true
		m.clearStoreLocked(ctx)
		m.notifyLocked(StatusLoggedOut)
	})
}

func (m *Manager) clearStoreLocked(ctx context.Context) {
	for _, name := range []string{cst.KeyLoginStatus, cst.KeyUserInfo, cst.KeyWechatToken, cst.KeyLoginTime, cst.KeySessionExpire} {
		if err := m.store.Remove(ctx, m.key(name)); err != nil {
			logs.CtxErrorf(ctx, "[session] client=%s remove %s err: %s", m.clientId, name, errorx.ErrorWithoutStack(err))
		}
	}
}

func (m *Manager) resetLocked() {
	m.status = StatusLoggedOut
	m.user = nil
	m.token = ""
	m.issuedAt = time.Time{}
	m.expiresAt = time.Time{}
}

// GetStatus 只读内存状态, 不触发IO
func (m *Manager) GetStatus() Status {
	var s Status
	m.do(func() { s = m.statusLocked() })
	return s
}

// statusLocked 读取时惰性判定过期
func (m *Manager) statusLocked() Status {
	if m.status != StatusLoggedOut && !m.expiresAt.IsZero() && m.now().After(m.expiresAt) {
		return StatusLoggedOut
	}
	return m.status
}

// GetCurrentUser 只读内存状态, 不触发IO
func (m *Manager) GetCurrentUser() *User {
	var u *User
	m.do(func() {
		if m.statusLocked() != StatusLoggedOut {
			u = m.user
		}
	})
	return u
}

// Token 当前会话令牌
func (m *Manager) Token() string {
	var t string
	m.do(func() { t = m.token })
	return t
}

// CheckLoginStatus 会话是否有效, 未加载时惰性Init
// 超时按未登录处理, 不向上传播错误, 避免阻塞页面跳转
func (m *Manager) CheckLoginStatus(ctx context.Context) bool {
	type result struct{ ok bool }
	ch := make(chan result, 1)
	go func() {
		defer func() { recover() }() // manager可能在等待期间关闭
		var ok bool
		m.do(func() {
			if !m.inited {
				if err := m.initLocked(ctx); err != nil {
					logs.CtxErrorf(ctx, "[session] client=%s init err: %s", m.clientId, errorx.ErrorWithoutStack(err))
					ok = false
					return
				}
			}
			ok = m.statusLocked() != StatusLoggedOut && m.user != nil
		})
		ch <- result{ok: ok}
	}()

	timer := time.NewTimer(m.checkTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.ok
	case <-ctx.Done():
		return false
	case <-timer.C:
		// 超时丢弃结果, 底层IO不做取消
		logs.CtxErrorf(ctx, "[session] client=%s 登录状态检查超时", m.clientId)
		return false
	}
}

// UpdateUserInfo 按允许列表合并资料字段并写穿存储
// 返回实际生效的字段, 未知字段静默丢弃
func (m *Manager) UpdateUserInfo(ctx context.Context, fields map[string]any) (map[string]any, *User, error) {
	filtered := FilterUpdatableFields(fields)
	var u *User
	var err error
	m.do(func() {
		if m.statusLocked() == StatusLoggedOut || m.user == nil {
			err = errorx.New(errno.ErrNotLoggedIn)
			return
		}
		if len(filtered) == 0 {
			u = m.user
			return
		}
		updated := *m.user
		applyFields(&updated, filtered)
		userRaw, merr := sonic.MarshalString(&updated)
		if merr != nil {
			err = errorx.WrapByCode(merr, errno.ErrStorageFailure)
			return
		}
		if serr := m.store.Set(ctx, m.key(cst.KeyUserInfo), userRaw); serr != nil {
			err = errorx.WrapByCode(serr, errno.ErrStorageFailure)
			return
		}
		m.user = &updated
		u = m.user
	})
	if err != nil {
		return nil, nil, err
	}
	return filtered, u, nil
}

// Refresh 重新从存储加载并返回会话是否有效
func (m *Manager) Refresh(ctx context.Context) bool {
	m.do(func() {
		m.inited = false
		if err := m.initLocked(ctx); err != nil {
			logs.CtxErrorf(ctx, "[session] client=%s refresh err: %s", m.clientId, errorx.ErrorWithoutStack(err))
			m.resetLocked()
			m.inited = true
		}
	})
	return m.CheckLoginStatus(ctx)
}

// Subscribe 订阅状态变更, 返回只读通道与退订函数
// 接收方处理慢时丢弃通知, 不阻塞状态迁移
func (m *Manager) Subscribe() (<-chan Status, func()) {
	var ch chan Status
	var id int
	m.do(func() {
		ch = make(chan Status, 4)
		id = m.nextSub
		m.nextSub++
		m.subs[id] = ch
	})
	cancel := func() {
		m.do(func() {
			if sub, ok := m.subs[id]; ok {
				close(sub)
				delete(m.subs, id)
			}
		})
	}
	return ch, cancel
}

func (m *Manager) notifyLocked(s Status) {
	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
