package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/storage"
)

func newTestGuard(check bool) (*Guard, storage.KV) {
	store := storage.NewMemoryKV()
	g := New("client-1", store, func(context.Context) bool { return check })
	return g, store
}

func TestCheckAccessPublicPage(t *testing.T) {
	g, _ := newTestGuard(false)
	d := g.CheckAccess(context.Background(), LoginPage)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.RedirectTo)
}

func TestCheckAccessUnlistedPage(t *testing.T) {
	// 未登记的页面即使未登录也放行
	g, _ := newTestGuard(false)
	d := g.CheckAccess(context.Background(), "/pages/about/index")
	assert.True(t, d.Allowed)
}

func TestCheckAccessProtectedLoggedIn(t *testing.T) {
	g, _ := newTestGuard(true)
	d := g.CheckAccess(context.Background(), "/pages/profile/index")
	assert.True(t, d.Allowed)
}

func TestCheckAccessProtectedDenied(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGuard(false)

	d := g.CheckAccess(ctx, "/pages/practice/exercise")
	assert.False(t, d.Allowed)
	assert.Equal(t, LoginPage, d.RedirectTo)
	assert.Equal(t, ModeRedirect, d.Mode)

	// 来源页已记录
	page, ok, err := store.Get(ctx, "client-1:"+cst.KeyPendingPage)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/pages/practice/exercise", page)
}

func TestPendingPageSingleSlot(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGuard(false)

	g.CheckAccess(ctx, "/pages/profile/index")
	g.CheckAccess(ctx, "/pages/assessment/index")

	// 后写覆盖先写
	page, ok, err := store.Get(ctx, "client-1:"+cst.KeyPendingPage)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/pages/assessment/index", page)
}

func TestConsumePending(t *testing.T) {
	ctx := context.Background()
	g, store := newTestGuard(false)
	g.CheckAccess(ctx, "/pages/profile/index")

	d := g.ConsumePending(ctx)
	assert.True(t, d.Allowed)
	assert.Equal(t, "/pages/profile/index", d.RedirectTo)
	assert.Equal(t, ModeRedirect, d.Mode)

	// 取出即清除, 再次消费回到首页
	_, ok, err := store.Get(ctx, "client-1:"+cst.KeyPendingPage)
	require.NoError(t, err)
	assert.False(t, ok)

	d = g.ConsumePending(ctx)
	assert.True(t, d.Allowed)
	assert.Equal(t, IndexPage, d.RedirectTo)
	assert.Equal(t, ModeSwitchTab, d.Mode)
}

func TestPageTables(t *testing.T) {
	assert.True(t, IsProtected("/pages/profile/index"))
	assert.True(t, IsProtected("/pages/practice/exercise"))
	assert.True(t, IsProtected("/pages/assessment/index"))
	assert.False(t, IsProtected(LoginPage))

	assert.True(t, IsPublic(LoginPage))
	assert.True(t, IsPublic(IndexPage))
	assert.False(t, IsPublic("/pages/profile/index"))
}
