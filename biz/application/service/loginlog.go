package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/wire"
	"github.com/wenfa-tech/grammar-core-api/biz/adaptor"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/basic"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/core_api"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/risk"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/loginlog"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/util"
	"github.com/wenfa-tech/grammar-core-api/pkg/errorx"
	"github.com/wenfa-tech/grammar-core-api/types/errno"
)

const (
	defaultStatisticsDays = 30
	defaultAnomalyHours   = 24
)

type ILoginLogService interface {
	History(ctx context.Context, req *core_api.LoginHistoryReq) (*core_api.LoginHistoryResp, error)
	Statistics(ctx context.Context, req *core_api.LoginStatisticsReq) (*core_api.LoginStatisticsResp, error)
	DetectAnomalies(ctx context.Context, req *core_api.DetectAnomalyReq) (*core_api.DetectAnomalyResp, error)
	Purge(ctx context.Context, req *core_api.PurgeLogsReq) (*core_api.PurgeLogsResp, error)
}

type LoginLogService struct {
	Config    *config.Config
	LogMapper loginlog.MongoMapper
}

var LoginLogServiceSet = wire.NewSet(
	wire.Struct(new(LoginLogService), "*"),
	wire.Bind(new(ILoginLogService), new(*LoginLogService)),
)

// resolveUserId 请求未指定用户时取当前登录用户
func resolveUserId(ctx context.Context, reqUserId string) (string, error) {
	if reqUserId != "" {
		return reqUserId, nil
	}
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		return "", errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	return uid, nil
}

func (s *LoginLogService) History(ctx context.Context, req *core_api.LoginHistoryReq) (*core_api.LoginHistoryResp, error) {
	uid, err := resolveUserId(ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	page := req.Page
	if page == nil {
		page = &basic.Page{}
	}
	ls, total, err := s.LogMapper.ListByUser(ctx, uid, page)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrLoginHistory)
	}
	return &core_api.LoginHistoryResp{
		Resp:    util.Success(),
		Logs:    ls,
		Total:   total,
		HasMore: util.HasMore(total, page),
	}, nil
}

// Statistics 统计窗口内的登录情况
// 窗口起点取齐到最早一天的零点, 使按日序列之和等于总数
func (s *LoginLogService) Statistics(ctx context.Context, req *core_api.LoginStatisticsReq) (*core_api.LoginStatisticsResp, error) {
	days := req.Days
	if days <= 0 {
		days = defaultStatisticsDays
	}
	now := time.Now()
	since := startOfDay(now.AddDate(0, 0, -int(days-1)))

	total, err := s.LogMapper.Count(ctx, req.UserId, since, time.Time{}, nil)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrLoginStatistic)
	}
	succTrue := true
	successful, err := s.LogMapper.Count(ctx, req.UserId, since, time.Time{}, &succTrue)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrLoginStatistic)
	}
	succFalse := false
	failed, err := s.LogMapper.Count(ctx, req.UserId, since, time.Time{}, &succFalse)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrLoginStatistic)
	}

	trend, err := s.dailyTrend(ctx, req.UserId, now, int(days))
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrLoginStatistic)
	}

	var rate float64
	if total > 0 {
		rate = math.Round(float64(successful)/float64(total)*100*100) / 100
	}
	return &core_api.LoginStatisticsResp{
		Resp:             util.Success(),
		TotalLogins:      total,
		SuccessfulLogins: successful,
		FailedLogins:     failed,
		SuccessRate:      rate,
		DailyTrend:       trend,
	}, nil
}

// dailyTrend 按日统计, 自旧到新, 无记录的天补零
// 每天一条只读count查询, 并发执行
func (s *LoginLogService) dailyTrend(ctx context.Context, userId string, now time.Time, days int) ([]*core_api.DayCount, error) {
	trend := make([]*core_api.DayCount, days)
	errs := make([]error, days)
	var wg sync.WaitGroup
	for i := 0; i < days; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			day := startOfDay(now.AddDate(0, 0, -(days - 1 - i)))
			count, err := s.LogMapper.Count(ctx, userId, day, day.AddDate(0, 0, 1), nil)
			if err != nil {
				errs[i] = err
				return
			}
			trend[i] = &core_api.DayCount{Date: day.Format("2006-01-02"), Count: count}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return trend, nil
}

func (s *LoginLogService) DetectAnomalies(ctx context.Context, req *core_api.DetectAnomalyReq) (*core_api.DetectAnomalyResp, error) {
	uid, err := resolveUserId(ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	hours := req.Hours
	if hours <= 0 {
		hours = defaultAnomalyHours
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	entries, err := s.LogMapper.FindSince(ctx, uid, since)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrDetectAnomaly)
	}
	return &core_api.DetectAnomalyResp{
		Resp:   util.Success(),
		Report: risk.Detect(entries),
	}, nil
}

// Purge 删除超出保留期的日志, 不可恢复
func (s *LoginLogService) Purge(ctx context.Context, req *core_api.PurgeLogsReq) (*core_api.PurgeLogsResp, error) {
	days := req.RetentionDays
	if days <= 0 {
		days = s.Config.LoginLog.RetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -int(days))
	deleted, err := s.LogMapper.DeleteBefore(ctx, cutoff)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.ErrPurgeLog)
	}
	return &core_api.PurgeLogsResp{Resp: util.Success(), Deleted: deleted}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
