package provider

import (
	"github.com/google/wire"
	"github.com/wenfa-tech/grammar-core-api/biz/application/service"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/loginlog"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/user"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/storage"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config          *config.Config
	AuthService     service.IAuthService
	LoginLogService service.ILoginLogService
}

func Get() *Provider {
	return provider
}

var ApplicationSet = wire.NewSet(
	service.AuthServiceSet,
	service.LoginLogServiceSet,
)

var InfraSet = wire.NewSet(
	config.NewConfig,
	storage.NewRedisKV,
	user.NewUserMongoMapper,
	loginlog.NewLoginLogMongoMapper,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	InfraSet,
)
