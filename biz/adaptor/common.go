package adaptor

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/pkg/logs"
)

const hertzContext = "hertz_context"

// ClientIdHeader 客户端会话标识, 小程序侧按设备生成
const ClientIdHeader = "X-Client-Id"

func InjectContext(ctx context.Context, c *app.RequestContext) context.Context {
	return context.WithValue(ctx, hertzContext, c)
}

func ExtractContext(ctx context.Context) (*app.RequestContext, error) {
	c, ok := ctx.Value(hertzContext).(*app.RequestContext)
	if !ok {
		return nil, errors.New("hertz context not found")
	}
	return c, nil
}

// ExtractUserId 从Authorization头解析用户ID
func ExtractUserId(ctx context.Context) (userId string, err error) {
	defer func() {
		if err != nil {
			logs.CtxInfof(ctx, "extract user meta fail, err=%v", err)
		}
	}()
	c, err := ExtractContext(ctx)
	if err != nil {
		return
	}
	tokenString := string(c.GetHeader("Authorization"))
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.GetConfig().Auth.SecretKey), nil
	})
	if err != nil {
		return
	}
	if !token.Valid {
		err = errors.New("token is not valid")
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		err = errors.New("unexpected claims type")
		return
	}
	userId, ok = claims["userId"].(string)
	if !ok {
		err = errors.New("userId claim not found")
	}
	return
}

// ExtractClientId 获取客户端会话标识
// 优先取请求头, 其次用令牌中的用户ID兜底
func ExtractClientId(ctx context.Context) string {
	c, err := ExtractContext(ctx)
	if err != nil {
		return ""
	}
	if cid := string(c.GetHeader(ClientIdHeader)); cid != "" {
		return cid
	}
	uid, err := ExtractUserId(ctx)
	if err != nil {
		return ""
	}
	return uid
}
