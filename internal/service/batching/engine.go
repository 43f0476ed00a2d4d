package batching

import (
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	id "gitee.com/flycash/care-notification/internal/pkg/id_generator"
	"github.com/gotomicro/ego/core/elog"
)

// 批次元数据的键
const (
	MetadataRuleID          = "ruleId"
	MetadataOverflowIDs     = "overflowNotificationIds"
	MetadataHourIndex       = "hourIndex"
	MetadataDailyLimitDefer = "deferredByDailyLimit"
)

type Config struct {
	// GroupingWindowMinutes smart_grouping 批次的等待时间
	GroupingWindowMinutes int `yaml:"groupingWindowMinutes"`
	// DefaultWindowMinutes 规则没有时间窗口时的等待时间
	DefaultWindowMinutes int `yaml:"defaultWindowMinutes"`
	// HighPriorityCeilingMinutes HIGH 批次自创建起最多延后这么久
	HighPriorityCeilingMinutes int `yaml:"highPriorityCeilingMinutes"`
}

func DefaultConfig() Config {
	return Config{
		GroupingWindowMinutes:      30,
		DefaultWindowMinutes:       15,
		HighPriorityCeilingMinutes: 240,
	}
}

type Option func(e *Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine 批处理引擎，规则在创建后只读
type Engine struct {
	rules  []domain.BatchingRule
	cfg    Config
	ids    id.Generator
	now    func() time.Time
	logger *elog.Component
}

func NewEngine(rules []domain.BatchingRule, cfg Config, ids id.Generator, opts ...Option) (*Engine, error) {
	if err := validateRules(rules); err != nil {
		return nil, err
	}
	if cfg.GroupingWindowMinutes <= 0 || cfg.DefaultWindowMinutes <= 0 || cfg.HighPriorityCeilingMinutes <= 0 {
		return nil, fmt.Errorf("%w: 批处理时间窗口必须为正", errs.ErrInvalidParameter)
	}
	e := &Engine{
		rules:  append([]domain.BatchingRule(nil), rules...),
		cfg:    cfg,
		ids:    ids,
		now:    time.Now,
		logger: elog.DefaultLogger.With(elog.String("component", "batching")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules 返回规则的副本
func (e *Engine) Rules() []domain.BatchingRule {
	return append([]domain.BatchingRule(nil), e.rules...)
}

// ShouldBatch 决定这一组通知要不要合并成批次
func (e *Engine) ShouldBatch(ns []domain.Notification, userID int64) domain.BatchDecision {
	if len(ns) == 0 {
		return domain.BatchDecision{Reasoning: "没有待处理的通知"}
	}
	for i := range ns {
		if ns[i].Priority == domain.PriorityUrgent || ns[i].Type.IsEmergency() {
			return domain.BatchDecision{Reasoning: "包含紧急通知，必须立即单独发送"}
		}
	}
	rule, ok := e.match(ns[0], userID)
	if !ok {
		return domain.BatchDecision{Reasoning: "没有匹配的批处理规则"}
	}
	if len(ns) < rule.MinBatchSize {
		return domain.BatchDecision{
			Rule:      &rule,
			Reasoning: fmt.Sprintf("通知数量 %d 少于规则 %s 的最小批次 %d", len(ns), rule.ID, rule.MinBatchSize),
		}
	}
	strategy := selectStrategy(ns, rule)
	return domain.BatchDecision{
		ShouldBatch: true,
		Rule:        &rule,
		Strategy:    strategy,
		Reasoning:   fmt.Sprintf("命中规则 %s，使用 %s 策略", rule.ID, strategy),
	}
}

func (e *Engine) match(first domain.Notification, userID int64) (domain.BatchingRule, bool) {
	for _, r := range e.rules {
		if matchRule(r, first, userID) {
			return r, true
		}
	}
	return domain.BatchingRule{}, false
}

// selectStrategy 有共享关联键时智能分组，其次看规则有没有时间窗口
func selectStrategy(ns []domain.Notification, rule domain.BatchingRule) domain.BatchStrategy {
	if sharesCorrelationKey(ns) {
		return domain.StrategySmartGrouping
	}
	if rule.BatchWindowMinutes > 0 {
		return domain.StrategyTimeBased
	}
	return domain.StrategyCountBased
}

// sharesCorrelationKey 同一个用药或预约ID出现在多于一条通知上
func sharesCorrelationKey(ns []domain.Notification) bool {
	seen := make(map[string]struct{}, len(ns))
	for i := range ns {
		key := ns[i].CorrelationKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}

// CreateBatch 超出 MaxBatchSize 的通知不会丢弃，ID 记录在元数据里留给下一轮
func (e *Engine) CreateBatch(ns []domain.Notification, userID int64,
	rule domain.BatchingRule, strategy domain.BatchStrategy,
) (domain.NotificationBatch, error) {
	if len(ns) == 0 {
		return domain.NotificationBatch{}, fmt.Errorf("%w: 批次不能为空", errs.ErrInvalidParameter)
	}
	batchID, err := e.ids.NextID()
	if err != nil {
		return domain.NotificationBatch{}, err
	}
	contents, overflow := ns, []domain.Notification(nil)
	if rule.MaxBatchSize > 0 && len(ns) > rule.MaxBatchSize {
		contents, overflow = ns[:rule.MaxBatchSize], ns[rule.MaxBatchSize:]
	}
	contents = append([]domain.Notification(nil), contents...)

	now := e.now()
	batch := domain.NotificationBatch{
		ID:            batchID,
		UserID:        userID,
		Notifications: contents,
		BatchType:     domain.BatchTypeDigest,
		Strategy:      strategy,
		CreatedAt:     now,
		ScheduledFor:  now.Add(e.window(rule, strategy)),
		Priority:      domain.HighestPriority(contents),
		Metadata:      map[string]any{MetadataRuleID: rule.ID},
	}
	if strategy == domain.StrategySmartGrouping {
		batch.BatchType = domain.BatchTypeGrouped
	}
	if batch.BatchType == domain.BatchTypeDigest {
		digest := BuildDigest(contents)
		batch.DigestContent = &digest
	}
	if len(overflow) > 0 {
		ids := make([]uint64, 0, len(overflow))
		for i := range overflow {
			ids = append(ids, overflow[i].ID)
		}
		batch.Metadata[MetadataOverflowIDs] = ids
		e.logger.Info("批次超出上限，剩余通知留到下一轮",
			elog.String("rule", rule.ID),
			elog.Int("overflow", len(overflow)))
	}
	return batch, nil
}

func (e *Engine) window(rule domain.BatchingRule, strategy domain.BatchStrategy) time.Duration {
	switch {
	case strategy == domain.StrategyTimeBased && rule.BatchWindowMinutes > 0:
		return time.Duration(rule.BatchWindowMinutes) * time.Minute
	case strategy == domain.StrategySmartGrouping:
		return time.Duration(e.cfg.GroupingWindowMinutes) * time.Minute
	default:
		return time.Duration(e.cfg.DefaultWindowMinutes) * time.Minute
	}
}
