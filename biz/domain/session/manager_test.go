package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/storage"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/types/errno"
)

// fakeVerifier 固定返回的认证后端
type fakeVerifier struct {
	result *VerifyResult
	err    error
	delay  time.Duration
}

func (f *fakeVerifier) VerifyWechat(_ context.Context, _ *Credential) (*VerifyResult, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func wechatUser() *User {
	now := time.Now()
	return &User{
		Id:            "64b000000000000000000001",
		OpenId:        "openid-1",
		Nickname:      "测试用户",
		Language:      "zh_CN",
		LoginCount:    1,
		LastLoginTime: now,
		CreateTime:    now,
	}
}

func newTestManager(t *testing.T, store storage.KV, v Verifier, opts ...Option) *Manager {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryKV()
	}
	if v == nil {
		v = &fakeVerifier{result: &VerifyResult{User: wechatUser(), Token: "tok"}}
	}
	m := NewManager("client-1", store, v, opts...)
	t.Cleanup(m.Close)
	return m
}

func TestGuestLogin(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)

	u, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsGuest)
	assert.Equal(t, StatusGuest, m.GetStatus())
	assert.True(t, m.CheckLoginStatus(ctx))
	assert.True(t, m.GetCurrentUser().IsGuest)
}

func TestStatusUserInvariant(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)

	// 未登录时无用户
	assert.Equal(t, StatusLoggedOut, m.GetStatus())
	assert.Nil(t, m.GetCurrentUser())

	// 登录后状态与用户同时存在
	_, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, StatusLoggedOut, m.GetStatus())
	assert.NotNil(t, m.GetCurrentUser())

	// 登出后同时清空
	m.Logout(ctx)
	assert.Equal(t, StatusLoggedOut, m.GetStatus())
	assert.Nil(t, m.GetCurrentUser())
}

func TestLogoutClearsStorage(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryKV()
	m := newTestManager(t, store, nil)

	_, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)
	m.Logout(ctx)

	assert.False(t, m.CheckLoginStatus(ctx))
	for _, key := range []string{"loginStatus", "userInfo", "loginTime", "sessionExpireAt", "wechatToken"} {
		_, ok, gerr := store.Get(ctx, "client-1:"+key)
		require.NoError(t, gerr)
		assert.False(t, ok, "key %s should be removed", key)
	}
}

func TestWechatLogin(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)

	u, token, err := m.LoginWithWechat(ctx, &Credential{Code: "code-1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "openid-1", u.OpenId)
	assert.Equal(t, StatusWechat, m.GetStatus())
	assert.Equal(t, "tok", m.Token())
}

func TestWechatLoginMissingCredential(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)

	_, _, err := m.LoginWithWechat(ctx, &Credential{})
	require.Error(t, err)
	assert.Equal(t, int32(errno.ErrMissingCredential), errorx.CodeOf(err))
	assert.Equal(t, StatusLoggedOut, m.GetStatus())
}

func TestWechatLoginBackendRejectedKeepsState(t *testing.T) {
	ctx := context.Background()
	v := &fakeVerifier{err: errorx.New(errno.ErrBackendRejected)}
	m := newTestManager(t, nil, v)

	_, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)

	_, _, err = m.LoginWithWechat(ctx, &Credential{Code: "bad"})
	require.Error(t, err)
	assert.Equal(t, int32(errno.ErrBackendRejected), errorx.CodeOf(err))
	// 失败不产生部分迁移, 仍是游客会话
	assert.Equal(t, StatusGuest, m.GetStatus())
	assert.True(t, m.GetCurrentUser().IsGuest)
}

func TestSessionExpiryLazy(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }
	m := newTestManager(t, nil, nil, WithClock(func() time.Time { return clock() }))

	_, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)
	require.True(t, m.CheckLoginStatus(ctx))

	// 7天后未显式登出也按未登录处理
	expired := now.Add(7*24*time.Hour + time.Minute)
	clock = func() time.Time { return expired }
	assert.False(t, m.CheckLoginStatus(ctx))
	assert.Equal(t, StatusLoggedOut, m.GetStatus())
	assert.Nil(t, m.GetCurrentUser())
}

func TestInitRestoresSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryKV()
	m1 := newTestManager(t, store, nil)
	_, _, err := m1.LoginWithWechat(ctx, &Credential{Code: "code-1"})
	require.NoError(t, err)

	// 新实例从存储恢复
	m2 := NewManager("client-1", store, &fakeVerifier{}, WithDuration(7*24*time.Hour))
	t.Cleanup(m2.Close)
	require.NoError(t, m2.Init(ctx))
	assert.Equal(t, StatusWechat, m2.GetStatus())
	require.NotNil(t, m2.GetCurrentUser())
	assert.Equal(t, "openid-1", m2.GetCurrentUser().OpenId)
	assert.Equal(t, "tok", m2.Token())
}

func TestInitClearsExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryKV()
	past := time.Now().Add(-8 * 24 * time.Hour)
	m1 := newTestManager(t, store, nil, WithClock(func() time.Time { return past }))
	_, err := m1.LoginAsGuest(ctx)
	require.NoError(t, err)

	m2 := NewManager("client-1", store, &fakeVerifier{})
	t.Cleanup(m2.Close)
	require.NoError(t, m2.Init(ctx))
	assert.Equal(t, StatusLoggedOut, m2.GetStatus())
	_, ok, _ := store.Get(ctx, "client-1:loginStatus")
	assert.False(t, ok)
}

func TestUpdateUserInfoAllowList(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)
	_, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)

	updated, u, err := m.UpdateUserInfo(ctx, map[string]any{
		"nickname": "X",
		"hacked":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "X", u.Nickname)
	assert.Contains(t, updated, "nickname")
	assert.NotContains(t, updated, "hacked")
}

func TestUpdateUserInfoNotLoggedIn(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)

	_, _, err := m.UpdateUserInfo(ctx, map[string]any{"nickname": "X"})
	require.Error(t, err)
	assert.Equal(t, int32(errno.ErrNotLoggedIn), errorx.CodeOf(err))
}

// slowKV Get阻塞, 用于触发状态检查超时
type slowKV struct {
	storage.KV
	delay time.Duration
}

func (s *slowKV) Get(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(s.delay)
	return s.KV.Get(ctx, key)
}

func TestCheckLoginStatusTimeout(t *testing.T) {
	ctx := context.Background()
	store := &slowKV{KV: storage.NewMemoryKV(), delay: 500 * time.Millisecond}
	m := newTestManager(t, store, nil, WithCheckTimeout(50*time.Millisecond))

	start := time.Now()
	ok := m.CheckLoginStatus(ctx)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestConcurrentLoginSerialized(t *testing.T) {
	ctx := context.Background()
	v := &fakeVerifier{result: &VerifyResult{User: wechatUser(), Token: "tok"}, delay: 10 * time.Millisecond}
	m := newTestManager(t, nil, v)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = m.LoginAsGuest(ctx)
	}()
	go func() {
		defer wg.Done()
		_, _, _ = m.LoginWithWechat(ctx, &Credential{Code: "code-1"})
	}()
	wg.Wait()

	// 串行化后收敛到唯一终态, 且状态与用户一致
	status := m.GetStatus()
	u := m.GetCurrentUser()
	require.NotNil(t, u)
	switch status {
	case StatusGuest:
		assert.True(t, u.IsGuest)
	case StatusWechat:
		assert.Equal(t, "openid-1", u.OpenId)
	default:
		t.Fatalf("unexpected status %s", status)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil, nil)
	ch, cancel := m.Subscribe()

	_, err := m.LoginAsGuest(ctx)
	require.NoError(t, err)
	select {
	case s := <-ch:
		assert.Equal(t, StatusGuest, s)
	case <-time.After(time.Second):
		t.Fatal("no status notification")
	}

	m.Logout(ctx)
	select {
	case s := <-ch:
		assert.Equal(t, StatusLoggedOut, s)
	case <-time.After(time.Second):
		t.Fatal("no status notification")
	}

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestStorageFailureSurfacedOnLogin(t *testing.T) {
	ctx := context.Background()
	store := &failingKV{}
	m := newTestManager(t, store, nil)

	_, err := m.LoginAsGuest(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(errno.ErrStorageFailure), errorx.CodeOf(err))
	// 存储失败不产生半截状态
	assert.Equal(t, StatusLoggedOut, m.GetStatus())
}

type failingKV struct{}

func (f *failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("kv down")
}

func (f *failingKV) Set(context.Context, string, string) error {
	return errors.New("kv down")
}

func (f *failingKV) Remove(context.Context, string) error {
	return errors.New("kv down")
}
