package config

import (
	"os"
	"sync"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

var (
	config *Config
	once   sync.Once
)

type Auth struct {
	SecretKey    string
	AccessExpire int64
}

type Mongo struct {
	URL string
	DB  string
}

// Wechat 小程序登录凭证校验配置
type Wechat struct {
	AppID           string
	AppSecret       string
	Code2SessionURL string `json:",default=https://api.weixin.qq.com/sns/jscode2session"`
}

// Session 客户端会话配置
type Session struct {
	DurationDays   int64 `json:",default=7"`
	CheckTimeoutMs int64 `json:",default=3000"`
}

// LoginLog 登录日志配置
type LoginLog struct {
	RetentionDays int64 `json:",default=90"`
}

type Config struct {
	service.ServiceConf
	ListenOn        string
	MetricsListenOn string `json:",default=:9091"`
	Auth            Auth
	Wechat          Wechat
	Session         Session
	LoginLog        LoginLog
	Cache           cache.CacheConf
	Redis           redis.RedisConf
	Mongo           Mongo
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return config, nil
}

func GetConfig() *Config {
	return config
}
