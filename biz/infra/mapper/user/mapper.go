package user

import (
	"context"
	"time"

	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "users"
	cacheKeyPrefix = "cache:user:"
)

// Profile 登录时携带的微信用户信息, 缺省字段保留库内旧值
type Profile struct {
	Nickname string
	Avatar   string
	Gender   int32
	Country  string
	Province string
	City     string
	Language string
}

type MongoMapper interface {
	// FindOrCreateByOpenId 按openid查找用户, 首次出现则创建, 每次登录刷新计数与时间
	FindOrCreateByOpenId(ctx context.Context, openid, unionid string, profile *Profile) (*User, error)
	FindById(ctx context.Context, id string) (*User, error)
	UpdateField(ctx context.Context, uid primitive.ObjectID, update bson.M) error
}

type mongoMapper struct {
	conn *monc.Model
}

func NewUserMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

func (m *mongoMapper) FindOrCreateByOpenId(ctx context.Context, openid, unionid string, profile *Profile) (*User, error) {
	now := time.Now()
	filter := bson.M{cst.OpenId: openid}
	set := bson.M{cst.LastLoginTime: now, cst.UpdateTime: now}
	// 登录携带的资料覆盖旧值, 未携带则保留
	if profile != nil {
		if profile.Nickname != "" {
			set[cst.Nickname] = profile.Nickname
		}
		if profile.Avatar != "" {
			set[cst.Avatar] = profile.Avatar
		}
	}
	setOnInsert := bson.M{
		cst.OpenId:     openid,
		cst.CreateTime: now,
		"is_guest":     false,
	}
	if unionid != "" {
		setOnInsert["union_id"] = unionid
	}
	if profile != nil {
		setOnInsert[cst.Gender] = profile.Gender
		setOnInsert[cst.Country] = profile.Country
		setOnInsert[cst.Province] = profile.Province
		setOnInsert[cst.City] = profile.City
		setOnInsert[cst.Language] = profile.Language
	}
	// login_count 在插入和更新时都自增, 新用户首登即为1
	update := bson.M{cst.Set: set, cst.SetOnInsert: setOnInsert, cst.Inc: bson.M{cst.LoginCount: 1}}

	var u User
	err := m.conn.FindOneAndUpdate(ctx, cacheKeyPrefix+openid, &u, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After))
	if err != nil {
		logs.CtxErrorf(ctx, "[mapper] [user] [FindOrCreateByOpenId] upsert err: %s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return &u, nil
}

func (m *mongoMapper) FindById(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	key := cacheKeyPrefix + id
	filter := bson.M{cst.Id: oid}
	var u User
	err = m.conn.FindOne(ctx, key, &u, filter)
	return &u, err
}

// UpdateField 更新字段
func (m *mongoMapper) UpdateField(ctx context.Context, uid primitive.ObjectID, update bson.M) error {
	update[cst.UpdateTime] = time.Now()
	key := cacheKeyPrefix + uid.Hex()
	if _, err := m.conn.UpdateByID(ctx, key, uid, bson.M{cst.Set: update}); err != nil {
		logs.CtxErrorf(ctx, "failed to update user %s: %s", uid.Hex(), errorx.ErrorWithoutStack(err))
		return err
	}
	return nil
}
