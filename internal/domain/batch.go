package domain

import (
	"time"
)

// BatchType 批次类型
type BatchType string

const (
	BatchTypeDigest              BatchType = "digest"
	BatchTypeGrouped             BatchType = "grouped"
	BatchTypeFrequencyControlled BatchType = "frequency_controlled"
)

// BatchStrategy 批处理策略
type BatchStrategy string

const (
	StrategySmartGrouping BatchStrategy = "smart_grouping"
	StrategyTimeBased     BatchStrategy = "time_based"
	StrategyCountBased    BatchStrategy = "count_based"
)

// ConditionOperator 规则条件运算符
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorIn        ConditionOperator = "in"
	OperatorNotIn     ConditionOperator = "not_in"
	OperatorExists    ConditionOperator = "exists"
)

// RuleCondition 针对第一条通知和用户ID求值
// Field 支持 priority / type / userId / metadata.<key>
type RuleCondition struct {
	Field    string            `yaml:"field"`
	Operator ConditionOperator `yaml:"operator"`
	Values   []string          `yaml:"values"`
}

// BatchingRule 静态批处理规则
type BatchingRule struct {
	ID                string             `yaml:"id"`
	Name              string             `yaml:"name"`
	NotificationTypes []NotificationType `yaml:"notificationTypes"`
	Conditions        []RuleCondition    `yaml:"conditions"`
	MinBatchSize      int                `yaml:"minBatchSize"`
	MaxBatchSize      int                `yaml:"maxBatchSize"`
	// BatchWindowMinutes 为 0 表示没有时间窗口
	BatchWindowMinutes int  `yaml:"batchWindowMinutes"`
	Active             bool `yaml:"active"`
}

func (r BatchingRule) AppliesTo(t NotificationType) bool {
	for _, nt := range r.NotificationTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// BatchDecision shouldBatch 的结果
type BatchDecision struct {
	ShouldBatch bool
	Rule        *BatchingRule
	Strategy    BatchStrategy
	Reasoning   string
}

// DigestItem 摘要中的一条
type DigestItem struct {
	NotificationID uint64   `json:"notificationId"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Priority       Priority `json:"priority"`
}

// DigestSection 同一类型的通知组成一节
type DigestSection struct {
	Type  NotificationType `json:"type"`
	Title string           `json:"title"`
	Items []DigestItem     `json:"items"`
}

// DigestContent 摘要内容，只有 digest 批次才有
type DigestContent struct {
	Title             string          `json:"title"`
	Summary           string          `json:"summary"`
	Sections          []DigestSection `json:"sections"`
	TotalCount        int             `json:"totalCount"`
	HighPriorityCount int             `json:"highPriorityCount"`
}

// NotificationBatch 一个批次只创建并调度一次，重新调度时覆盖 ScheduledFor
type NotificationBatch struct {
	ID            uint64
	UserID        int64
	Notifications []Notification
	BatchType     BatchType
	Strategy      BatchStrategy
	CreatedAt     time.Time
	ScheduledFor  time.Time
	Priority      Priority
	DigestContent *DigestContent
	Metadata      map[string]any
}

// Reschedule 覆盖调度时间
func (b *NotificationBatch) Reschedule(at time.Time) {
	b.ScheduledFor = at
}

// GroupingCriteria 相关通知的分组依据
type GroupingCriteria struct {
	ByType         bool
	MetadataFields []string
}

// NotificationGroup 同组通知，至少两条
type NotificationGroup struct {
	Key           string
	Notifications []Notification
}

// FrequencyLimits 频控上限
type FrequencyLimits struct {
	MaxPerHour int
	MaxPerDay  int
}

// BatchTimingPreferences 批次发送时机偏好
type BatchTimingPreferences struct {
	PreferredHours []int
	QuietHours     *QuietHours
}

// HighestPriority 一组通知中最高的优先级
func HighestPriority(ns []Notification) Priority {
	res := PriorityLow
	for i := range ns {
		if ns[i].Priority.Rank() > res.Rank() {
			res = ns[i].Priority
		}
	}
	return res
}
