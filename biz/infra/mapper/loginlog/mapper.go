package loginlog

import (
	"context"
	"time"

	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/basic"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/cst"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/util"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "login_logs"
	cacheKeyPrefix = "cache:login_log:"
)

type MongoMapper interface {
	Insert(ctx context.Context, log *LoginLog) error
	// ListByUser 按登录时间倒序分页查询用户登录历史
	ListByUser(ctx context.Context, userId string, page *basic.Page) ([]*LoginLog, int64, error)
	// Count 统计窗口内的日志条数, userId为空则全局统计, success为nil则不区分成败
	Count(ctx context.Context, userId string, since, until time.Time, success *bool) (int64, error)
	// FindSince 查询用户自since以来的全部日志, 登录时间倒序
	FindSince(ctx context.Context, userId string, since time.Time) ([]*LoginLog, error)
	// DeleteBefore 删除登录时间早于cutoff的日志, 返回删除条数
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewLoginLogMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

func (m *mongoMapper) Insert(ctx context.Context, log *LoginLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	if log.LoginTime.IsZero() {
		log.LoginTime = time.Now()
	}
	_, err := m.conn.InsertOne(ctx, cacheKeyPrefix+log.ID.Hex(), log)
	if err != nil {
		logs.CtxErrorf(ctx, "[mapper] [loginlog] [Insert] err: %s", errorx.ErrorWithoutStack(err))
	}
	return err
}

func (m *mongoMapper) ListByUser(ctx context.Context, userId string, page *basic.Page) ([]*LoginLog, int64, error) {
	var ls []*LoginLog
	filter := bson.M{cst.UserId: userId}
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.LoginTime: -1})
	if err := m.conn.Find(ctx, &ls, filter, opts); err != nil {
		return nil, 0, err
	}
	total, err := m.conn.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ls, total, nil
}

func (m *mongoMapper) Count(ctx context.Context, userId string, since, until time.Time, success *bool) (int64, error) {
	window := bson.M{cst.GTE: since}
	if !until.IsZero() {
		window[cst.LT] = until
	}
	filter := bson.M{cst.LoginTime: window}
	if userId != "" {
		filter[cst.UserId] = userId
	}
	if success != nil {
		filter[cst.Success] = *success
	}
	return m.conn.CountDocuments(ctx, filter)
}

func (m *mongoMapper) FindSince(ctx context.Context, userId string, since time.Time) ([]*LoginLog, error) {
	var ls []*LoginLog
	filter := bson.M{cst.UserId: userId, cst.LoginTime: bson.M{cst.GTE: since}}
	opts := options.Find().SetSort(bson.M{cst.LoginTime: -1})
	if err := m.conn.Find(ctx, &ls, filter, opts); err != nil {
		return nil, err
	}
	return ls, nil
}

func (m *mongoMapper) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{cst.LoginTime: bson.M{cst.LT: cutoff}}
	deleted, err := m.conn.DeleteMany(ctx, filter)
	if err != nil {
		logs.CtxErrorf(ctx, "[mapper] [loginlog] [DeleteBefore] err: %s", errorx.ErrorWithoutStack(err))
		return 0, err
	}
	return deleted, nil
}
