package guard

import (
	"context"

	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/storage"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/pkg/logs"
)

// guard 页面访问守卫
// 维护受保护/公开两张互斥的页面表, 未登记的页面默认放行

// Mode 跳转方式
type Mode string

const (
	ModeSwitchTab Mode = "switch_tab" // tabBar页面切换
	ModeNavigate  Mode = "navigate"   // 入栈跳转
	ModeRedirect  Mode = "redirect"   // 替换当前页
	ModeRelaunch  Mode = "relaunch"   // 重启到目标页
)

const (
	LoginPage = "/pages/login/index"
	IndexPage = "/pages/index/index"
)

// 需要登录的页面路径
var protectedPages = map[string]struct{}{
	"/pages/profile/index":     {},
	"/pages/practice/exercise": {},
	"/pages/assessment/index":  {},
}

// 不需要登录的页面路径
var publicPages = map[string]struct{}{
	LoginPage: {},
	IndexPage: {},
}

// Decision 访问判定结果
// 拒绝时给出跳转目标, 由导航层执行跳转
type Decision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Mode       Mode   `json:"mode,omitempty"`
}

// StatusChecker 登录状态查询, 由会话管理器提供
type StatusChecker func(ctx context.Context) bool

// Guard 单个客户端的访问守卫
type Guard struct {
	clientId string
	store    storage.KV
	check    StatusChecker
}

func New(clientId string, store storage.KV, check StatusChecker) *Guard {
	return &Guard{clientId: clientId, store: store, check: check}
}

// IsProtected 页面是否需要登录
func IsProtected(pagePath string) bool {
	_, ok := protectedPages[pagePath]
	return ok
}

// IsPublic 页面是否公开
func IsPublic(pagePath string) bool {
	_, ok := publicPages[pagePath]
	return ok
}

// CheckAccess 页面访问判定
// 公开页面直接放行; 受保护页面要求会话有效, 否则跳转登录页并记录来源页
func (g *Guard) CheckAccess(ctx context.Context, pagePath string) Decision {
	if IsPublic(pagePath) {
		return Decision{Allowed: true}
	}
	if !IsProtected(pagePath) {
		// 未登记的页面默认放行
		return Decision{Allowed: true}
	}
	if g.check(ctx) {
		return Decision{Allowed: true}
	}
	g.savePending(ctx, pagePath)
	return Decision{Allowed: false, RedirectTo: LoginPage, Mode: ModeRedirect}
}

// savePending 记录待访问页面, 单槽覆盖
func (g *Guard) savePending(ctx context.Context, pagePath string) {
	if pagePath == "" || IsPublic(pagePath) {
		return
	}
	if err := g.store.Set(ctx, g.key(), pagePath); err != nil {
		logs.CtxErrorf(ctx, "[guard] client=%s save pending page err: %s", g.clientId, errorx.ErrorWithoutStack(err))
	}
}

// ConsumePending 登录成功后取出并清除待访问页面
// 没有待访问页面时回到首页
func (g *Guard) ConsumePending(ctx context.Context) Decision {
	page, ok, err := g.store.Get(ctx, g.key())
	if err != nil || !ok || page == "" {
		return Decision{Allowed: true, RedirectTo: IndexPage, Mode: ModeSwitchTab}
	}
	if err = g.store.Remove(ctx, g.key()); err != nil {
		logs.CtxErrorf(ctx, "[guard] client=%s clear pending page err: %s", g.clientId, errorx.ErrorWithoutStack(err))
	}
	return Decision{Allowed: true, RedirectTo: page, Mode: ModeRedirect}
}

func (g *Guard) key() string {
	return g.clientId + ":" + cst.KeyPendingPage
}
