package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/basic"
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/core_api"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/risk"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/config"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/loginlog"
)

// fakeLogMapper 内存实现, 按与mongo查询相同的语义过滤
type fakeLogMapper struct {
	mu      sync.Mutex
	entries []*loginlog.LoginLog
}

func (f *fakeLogMapper) Insert(_ context.Context, log *loginlog.LoginLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeLogMapper) ListByUser(_ context.Context, userId string, page *basic.Page) ([]*loginlog.LoginLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*loginlog.LoginLog
	for _, e := range f.entries {
		if e.UserId == userId {
			matched = append(matched, e)
		}
	}
	total := int64(len(matched))
	skip := (page.GetPage() - 1) * page.GetSize()
	if skip >= total {
		return nil, total, nil
	}
	end := skip + page.GetSize()
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (f *fakeLogMapper) Count(_ context.Context, userId string, since, until time.Time, success *bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, e := range f.entries {
		if userId != "" && e.UserId != userId {
			continue
		}
		if e.LoginTime.Before(since) {
			continue
		}
		if !until.IsZero() && !e.LoginTime.Before(until) {
			continue
		}
		if success != nil && e.Success != *success {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeLogMapper) FindSince(_ context.Context, userId string, since time.Time) ([]*loginlog.LoginLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*loginlog.LoginLog
	for _, e := range f.entries {
		if e.UserId == userId && !e.LoginTime.Before(since) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (f *fakeLogMapper) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*loginlog.LoginLog
	var deleted int64
	for _, e := range f.entries {
		if e.LoginTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return deleted, nil
}

func newLogService(mapper *fakeLogMapper) *LoginLogService {
	return &LoginLogService{
		Config:    &config.Config{LoginLog: config.LoginLog{RetentionDays: 90}},
		LogMapper: mapper,
	}
}

func logAt(userId string, at time.Time, success bool) *loginlog.LoginLog {
	return &loginlog.LoginLog{
		UserId:    userId,
		OpenId:    "openid-" + userId,
		LoginTime: at,
		Ip:        "1.2.3.4",
		Platform:  "wechat_miniprogram",
		Success:   success,
	}
}

func TestHistoryPagination(t *testing.T) {
	ctx := context.Background()
	mapper := &fakeLogMapper{}
	now := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, mapper.Insert(ctx, logAt("u1", now.Add(-time.Duration(i)*time.Hour), true)))
	}
	require.NoError(t, mapper.Insert(ctx, logAt("u2", now, true)))
	svc := newLogService(mapper)

	p, size := int64(1), int64(3)
	resp, err := svc.History(ctx, &core_api.LoginHistoryReq{
		UserId: "u1",
		Page:   &basic.Page{Page: &p, Size: &size},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	assert.Len(t, resp.Logs, 3)
	assert.True(t, resp.HasMore)

	p = 2
	resp, err = svc.History(ctx, &core_api.LoginHistoryReq{
		UserId: "u1",
		Page:   &basic.Page{Page: &p, Size: &size},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Logs, 2)
	assert.False(t, resp.HasMore)
}

func TestStatisticsTrendSumsToTotal(t *testing.T) {
	ctx := context.Background()
	mapper := &fakeLogMapper{}
	now := time.Now()
	// 今天3次(1次失败), 昨天2次, 3天前1次
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now, true)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.Add(-time.Minute), true)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.Add(-2*time.Minute), false)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.AddDate(0, 0, -1), true)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.AddDate(0, 0, -1).Add(-time.Minute), true)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.AddDate(0, 0, -3), true)))
	svc := newLogService(mapper)

	resp, err := svc.Statistics(ctx, &core_api.LoginStatisticsReq{UserId: "u1", Days: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.TotalLogins)
	assert.Equal(t, int64(5), resp.SuccessfulLogins)
	assert.Equal(t, int64(1), resp.FailedLogins)
	assert.InDelta(t, 83.33, resp.SuccessRate, 0.001)

	require.Len(t, resp.DailyTrend, 7)
	var sum int64
	for _, day := range resp.DailyTrend {
		sum += day.Count
	}
	// 按日序列之和等于总数, 无记录的天补零
	assert.Equal(t, resp.TotalLogins, sum)
	assert.Equal(t, int64(3), resp.DailyTrend[6].Count)
	assert.Equal(t, int64(2), resp.DailyTrend[5].Count)
	assert.Equal(t, int64(0), resp.DailyTrend[4].Count)
	assert.Equal(t, time.Now().Format("2006-01-02"), resp.DailyTrend[6].Date)
}

func TestStatisticsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newLogService(&fakeLogMapper{})

	resp, err := svc.Statistics(ctx, &core_api.LoginStatisticsReq{UserId: "u1", Days: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.TotalLogins)
	assert.Equal(t, float64(0), resp.SuccessRate)
	require.Len(t, resp.DailyTrend, 7)
	for _, day := range resp.DailyTrend {
		assert.Equal(t, int64(0), day.Count)
	}
}

func TestDetectAnomaliesWindow(t *testing.T) {
	ctx := context.Background()
	mapper := &fakeLogMapper{}
	now := time.Now()
	// 窗口内11次, 窗口外的不参与检测
	for i := 0; i < 11; i++ {
		require.NoError(t, mapper.Insert(ctx, logAt("u1", now.Add(-time.Duration(i)*time.Minute), true)))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, mapper.Insert(ctx, logAt("u1", now.Add(-48*time.Hour), false)))
	}
	svc := newLogService(mapper)

	resp, err := svc.DetectAnomalies(ctx, &core_api.DetectAnomalyReq{UserId: "u1", Hours: 24})
	require.NoError(t, err)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 11, resp.Report.TotalLogins)
	assert.True(t, resp.Report.HasAbnormal)
	assert.Equal(t, risk.LevelHigh, resp.Report.RiskLevel)
}

func TestPurgeRetention(t *testing.T) {
	ctx := context.Background()
	mapper := &fakeLogMapper{}
	now := time.Now()
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now, true)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.AddDate(0, 0, -91), true)))
	require.NoError(t, mapper.Insert(ctx, logAt("u1", now.AddDate(0, 0, -200), true)))
	svc := newLogService(mapper)

	// 缺省走配置的90天保留期
	resp, err := svc.Purge(ctx, &core_api.PurgeLogsReq{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)

	stats, err := svc.Statistics(ctx, &core_api.LoginStatisticsReq{UserId: "u1", Days: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalLogins)
}
