package core_api

import (
	"github.com/wenfa-tech/grammar-core-api/biz/application/dto/basic"
	"github.com/wenfa-tech/grammar-core-api/biz/domain/risk"
	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/loginlog"
)

type LoginHistoryReq struct {
	UserId string      `json:"user_id,omitempty"` // 缺省为当前用户
	Page   *basic.Page `json:"page,omitempty"`
}

type LoginHistoryResp struct {
	Resp    *basic.Response
	Logs    []*loginlog.LoginLog `json:"logs"`
	Total   int64                `json:"total"`
	HasMore bool                 `json:"has_more"`
}

// DayCount 单日登录次数
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

type LoginStatisticsReq struct {
	UserId string `json:"user_id,omitempty"` // 为空则全局统计
	Days   int64  `json:"days,omitempty"`    // 统计窗口, 默认30天
}

type LoginStatisticsResp struct {
	Resp             *basic.Response
	TotalLogins      int64       `json:"total_logins"`
	SuccessfulLogins int64       `json:"successful_logins"`
	FailedLogins     int64       `json:"failed_logins"`
	SuccessRate      float64     `json:"success_rate"` // 百分比, 保留两位
	DailyTrend       []*DayCount `json:"daily_trend"`  // 自旧到新, 无记录的天补零
}

type DetectAnomalyReq struct {
	UserId string `json:"user_id,omitempty"` // 缺省为当前用户
	Hours  int64  `json:"hours,omitempty"`   // 检测窗口, 默认24小时
}

type DetectAnomalyResp struct {
	Resp   *basic.Response
	Report *risk.Report `json:"report"`
}

type PurgeLogsReq struct {
	RetentionDays int64 `json:"retention_days,omitempty"` // 默认90天
}

type PurgeLogsResp struct {
	Resp    *basic.Response
	Deleted int64 `json:"deleted"`
}
