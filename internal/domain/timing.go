package domain

import (
	"time"
)

// ActivityPattern 用户在某个星期几某个小时的活跃度，Score 取值 [0,1]
type ActivityPattern struct {
	DayOfWeek time.Weekday `json:"dayOfWeek"`
	Hour      int          `json:"hour"`
	Score     float64      `json:"score"`
}

// ResponseRate 某类通知在某个小时的历史响应率
type ResponseRate struct {
	Type NotificationType `json:"type"`
	Hour int              `json:"hour"`
	Rate float64          `json:"rate"`
}

// UserBehavior 用户行为数据
type UserBehavior struct {
	UserID           int64             `json:"userId"`
	Timezone         string            `json:"timezone"`
	QuietHours       *QuietHours       `json:"quietHours,omitempty"`
	PreferredHours   []int             `json:"preferredHours"`
	ActivityPatterns []ActivityPattern `json:"activityPatterns"`
	ResponseRates    []ResponseRate    `json:"responseRates"`
}

// ActivityScore ok 为 false 表示该时段没有数据
func (b UserBehavior) ActivityScore(day time.Weekday, hour int) (float64, bool) {
	for _, p := range b.ActivityPatterns {
		if p.DayOfWeek == day && p.Hour == hour {
			return p.Score, true
		}
	}
	return 0, false
}

// MostActiveHour 某天最活跃的小时
func (b UserBehavior) MostActiveHour(day time.Weekday) (int, bool) {
	best, found := -1.0, false
	hour := 0
	for _, p := range b.ActivityPatterns {
		if p.DayOfWeek != day {
			continue
		}
		if p.Score > best {
			best, hour, found = p.Score, p.Hour, true
		}
	}
	return hour, found
}

func (b UserBehavior) ResponseRateAt(t NotificationType, hour int) (float64, bool) {
	for _, r := range b.ResponseRates {
		if r.Type == t && r.Hour == hour {
			return r.Rate, true
		}
	}
	return 0, false
}

// BestResponseHour 某类通知响应率最高的小时
func (b UserBehavior) BestResponseHour(t NotificationType) (int, bool) {
	best, found := -1.0, false
	hour := 0
	for _, r := range b.ResponseRates {
		if r.Type != t {
			continue
		}
		if r.Rate > best {
			best, hour, found = r.Rate, r.Hour, true
		}
	}
	return hour, found
}

// TimingPreference 每种通知类型固定的时机偏好
type TimingPreference struct {
	Type                NotificationType `yaml:"type"`
	RespectQuietHours   bool             `yaml:"respectQuietHours"`
	ConsiderActivity    bool             `yaml:"considerActivity"`
	OptimizeForResponse bool             `yaml:"optimizeForResponse"`
	MinDelayMinutes     int              `yaml:"minDelayMinutes"`
	MaxDelayMinutes     int              `yaml:"maxDelayMinutes"`
}

func (p TimingPreference) MinDelay() time.Duration {
	return time.Duration(p.MinDelayMinutes) * time.Minute
}

func (p TimingPreference) MaxDelay() time.Duration {
	return time.Duration(p.MaxDelayMinutes) * time.Minute
}

// TimingRecommendation 智能时机计算结果
type TimingRecommendation struct {
	RecommendedTime  time.Time
	Confidence       float64
	Reasoning        []string
	AlternativeTimes []time.Time
	ShouldDefer      bool
	DeferReason      string
}
