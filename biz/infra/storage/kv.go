package storage

import (
	"context"
	"sync"
	"time"

	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// storage 提供会话持久化用的键值存储
// 键不存在时返回 ok=false 而不是错误

type KV interface {
	Get(ctx context.Context, key string) (val string, ok bool, err error)
	Set(ctx context.Context, key, val string) error
	Remove(ctx context.Context, key string) error
}

const keyPrefix = "session:"

type redisKV struct {
	rs  *redis.Redis
	ttl time.Duration
}

// NewRedisKV 基于redis的会话存储, 键带过期时间兜底
// 会话本身按 expiresAt 惰性过期, ttl 只是防止泄漏的上限
func NewRedisKV(c *config.Config) KV {
	ttl := time.Duration(c.Session.DurationDays*2) * 24 * time.Hour
	return &redisKV{rs: redis.MustNewRedis(c.Redis), ttl: ttl}
}

func (s *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rs.GetCtx(ctx, keyPrefix+key)
	if err != nil {
		return "", false, err
	}
	// redis中空串视为不存在, 存储的值均为非空序列化记录
	if val == "" {
		return "", false, nil
	}
	return val, true, nil
}

func (s *redisKV) Set(ctx context.Context, key, val string) error {
	return s.rs.SetexCtx(ctx, keyPrefix+key, val, int(s.ttl.Seconds()))
}

func (s *redisKV) Remove(ctx context.Context, key string) error {
	_, err := s.rs.DelCtx(ctx, keyPrefix+key)
	return err
}

type memoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV 内存实现, 用于测试与单机部署
func NewMemoryKV() KV {
	return &memoryKV{data: make(map[string]string)}
}

func (s *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *memoryKV) Set(_ context.Context, key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
	return nil
}

func (s *memoryKV) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
