package risk

import (
	"fmt"

	"github.com/wenfa-tech/grammar-core-api/biz/infra/mapper/loginlog"
)

// risk 异常登录检测规则
// 三条规则彼此独立, 各自给出风险等级, 最终取整体等级

// Level 风险等级
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// 异常类型
const (
	TypeHighFrequency    = "high_frequency"
	TypeSuspiciousIP     = "suspicious_ip"
	TypeMultipleFailures = "multiple_failures"
)

// 规则阈值
const (
	frequencyThreshold = 10 // 窗口内登录次数上限
	ipThreshold        = 5  // 单IP登录次数上限
	failureThreshold   = 3  // 窗口内失败次数上限
)

// IPCount 单个IP的登录次数
type IPCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// Abnormality 一条命中的异常
type Abnormality struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Risk    Level     `json:"risk"`
	Details []IPCount `json:"details,omitempty"`
}

// Report 检测结果
type Report struct {
	TotalLogins   int           `json:"total_logins"`
	Abnormalities []Abnormality `json:"abnormalities"`
	HasAbnormal   bool          `json:"has_abnormal"`
	RiskLevel     Level         `json:"risk_level"`
}

// Detect 对窗口内的登录日志执行全部规则
func Detect(entries []*loginlog.LoginLog) *Report {
	var abnormalities []Abnormality

	// 登录频率
	if len(entries) > frequencyThreshold {
		abnormalities = append(abnormalities, Abnormality{
			Type:    TypeHighFrequency,
			Message: fmt.Sprintf("窗口内登录次数过多: %d次", len(entries)),
			Risk:    LevelMedium,
		})
	}

	// IP集中度
	ipCounts := make(map[string]int)
	for _, e := range entries {
		if e.Ip != "" {
			ipCounts[e.Ip]++
		}
	}
	var suspicious []IPCount
	for ip, count := range ipCounts {
		if count > ipThreshold {
			suspicious = append(suspicious, IPCount{IP: ip, Count: count})
		}
	}
	if len(suspicious) > 0 {
		abnormalities = append(abnormalities, Abnormality{
			Type:    TypeSuspiciousIP,
			Message: "检测到可疑IP地址",
			Risk:    LevelHigh,
			Details: suspicious,
		})
	}

	// 失败次数
	failed := 0
	for _, e := range entries {
		if !e.Success {
			failed++
		}
	}
	if failed > failureThreshold {
		abnormalities = append(abnormalities, Abnormality{
			Type:    TypeMultipleFailures,
			Message: fmt.Sprintf("检测到多次登录失败: %d次", failed),
			Risk:    LevelHigh,
		})
	}

	return &Report{
		TotalLogins:   len(entries),
		Abnormalities: abnormalities,
		HasAbnormal:   len(abnormalities) > 0,
		RiskLevel:     overallLevel(abnormalities),
	}
}

// overallLevel 有high则high; 无high且medium不少于2条则medium; 其余low
func overallLevel(abnormalities []Abnormality) Level {
	if len(abnormalities) == 0 {
		return LevelLow
	}
	high, medium := 0, 0
	for _, ab := range abnormalities {
		switch ab.Risk {
		case LevelHigh:
			high++
		case LevelMedium:
			medium++
		}
	}
	if high > 0 {
		return LevelHigh
	}
	if medium > 1 {
		return LevelMedium
	}
	return LevelLow
}
