package timing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/repository"
	"github.com/gotomicro/ego/core/elog"
)

const (
	baseConfidence     = 0.5
	activityWeight     = 0.3
	responseWeight     = 0.2
	maxAlternatives    = 3
	minPreferredAlters = 2
)

type Config struct {
	// LateNightStartHour 和 LateNightEndHour 之间视为深夜，没有行为数据时推到 MorningHour
	LateNightStartHour int `yaml:"lateNightStartHour"`
	LateNightEndHour   int `yaml:"lateNightEndHour"`
	MorningHour        int `yaml:"morningHour"`
	// LowActivityThreshold 活跃度低于它就延后
	LowActivityThreshold float64 `yaml:"lowActivityThreshold"`
	// FlatDeferMinutes 没有配置免打扰时的固定延后时间
	FlatDeferMinutes int `yaml:"flatDeferMinutes"`
}

func DefaultConfig() Config {
	return Config{
		LateNightStartHour:   22,
		LateNightEndHour:     6,
		MorningHour:          8,
		LowActivityThreshold: 0.2,
		FlatDeferMinutes:     120,
	}
}

func (c Config) validate() error {
	for _, h := range []int{c.LateNightStartHour, c.LateNightEndHour, c.MorningHour} {
		if h < 0 || h > 23 {
			return fmt.Errorf("%w: 小时必须在 0-23 之间", errs.ErrInvalidParameter)
		}
	}
	if c.LowActivityThreshold < 0 || c.LowActivityThreshold > 1 || c.FlatDeferMinutes <= 0 {
		return fmt.Errorf("%w: 智能时机配置不合法", errs.ErrInvalidParameter)
	}
	return nil
}

type Option func(e *Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine 智能时机计算
type Engine struct {
	registry *Registry
	cfg      Config
	repo     repository.BehaviorRepository
	now      func() time.Time
	logger   *elog.Component
}

// NewEngine repo 为 nil 时 Recommend 总是走基础时机
func NewEngine(registry *Registry, cfg Config, repo repository.BehaviorRepository, opts ...Option) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		registry: registry,
		cfg:      cfg,
		repo:     repo,
		now:      time.Now,
		logger:   elog.DefaultLogger.With(elog.String("component", "timing")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Recommend 先加载用户行为数据再计算，加载失败时退化为基础时机
func (e *Engine) Recommend(ctx context.Context, userID int64, typ domain.NotificationType,
	priority domain.Priority, scheduled time.Time,
) domain.TimingRecommendation {
	var behavior *domain.UserBehavior
	if e.repo != nil && priority != domain.PriorityUrgent && !typ.IsEmergency() {
		b, err := e.repo.Get(ctx, userID)
		switch {
		case err == nil:
			behavior = &b
		case errors.Is(err, errs.ErrBehaviorNotFound):
		default:
			e.logger.Warn("加载用户行为数据失败，使用基础时机",
				elog.Int64("userId", userID),
				elog.FieldErr(err))
		}
	}
	return e.CalculateOptimalTiming(userID, typ, priority, scheduled, behavior)
}

// CalculateOptimalTiming scheduled 为零值表示调用方没有指定时间
func (e *Engine) CalculateOptimalTiming(userID int64, typ domain.NotificationType, priority domain.Priority,
	scheduled time.Time, behavior *domain.UserBehavior,
) domain.TimingRecommendation {
	now := e.now()
	if priority == domain.PriorityUrgent || typ.IsEmergency() {
		return domain.TimingRecommendation{
			RecommendedTime: now,
			Confidence:      1,
			Reasoning:       []string{"紧急通知立即发送"},
		}
	}
	pref := e.registry.Get(typ)
	if behavior == nil {
		return e.basicTiming(now, scheduled, pref)
	}

	loc, err := domain.LoadLocation(behavior.Timezone)
	if err != nil {
		e.logger.Warn("用户时区不合法，按 UTC 处理",
			elog.Int64("userId", userID),
			elog.String("timezone", behavior.Timezone))
		loc = time.UTC
	}
	now = now.In(loc)
	reasons := make([]string, 0, 4)

	earliest := now.Add(pref.MinDelay())
	candidate := latest(now, scheduled).In(loc).Add(pref.MinDelay())
	if pref.MinDelayMinutes > 0 {
		reasons = append(reasons, fmt.Sprintf("最少延后 %d 分钟", pref.MinDelayMinutes))
	}
	if pref.ConsiderActivity {
		if h, ok := behavior.MostActiveHour(candidate.Weekday()); ok {
			candidate = snapToHour(candidate, h, earliest)
			reasons = append(reasons, fmt.Sprintf("对齐到最活跃的 %d 点", h))
		}
	}
	if pref.OptimizeForResponse {
		if h, ok := behavior.BestResponseHour(typ); ok {
			candidate = snapToHour(candidate, h, earliest)
			reasons = append(reasons, fmt.Sprintf("对齐到响应率最高的 %d 点", h))
		}
	}
	if pref.MaxDelayMinutes > 0 {
		if ceiling := now.Add(pref.MaxDelay()); candidate.After(ceiling) {
			candidate = ceiling
			reasons = append(reasons, fmt.Sprintf("不超过最大延迟 %d 分钟", pref.MaxDelayMinutes))
		}
	}

	res := domain.TimingRecommendation{RecommendedTime: candidate}
	if priority != domain.PriorityHigh {
		if at, reason, ok := e.deferral(candidate, pref, behavior); ok {
			res.RecommendedTime = at
			res.ShouldDefer = true
			res.DeferReason = reason
			reasons = append(reasons, reason)
		}
	}
	res.Reasoning = reasons
	res.Confidence = confidence(behavior, typ, res.RecommendedTime)
	res.AlternativeTimes = alternatives(now, res.RecommendedTime, behavior.PreferredHours)
	return res
}

// basicTiming 没有行为数据：最小延迟后避开深夜
func (e *Engine) basicTiming(now, scheduled time.Time, pref domain.TimingPreference) domain.TimingRecommendation {
	candidate := latest(now, scheduled).Add(pref.MinDelay())
	reasons := []string{"没有行为数据，使用基础时机"}
	if e.lateNight(candidate.Hour()) {
		morning := domain.AtHour(candidate, e.cfg.MorningHour)
		if !morning.After(candidate) {
			morning = domain.AtHour(candidate.AddDate(0, 0, 1), e.cfg.MorningHour)
		}
		candidate = morning
		reasons = append(reasons, fmt.Sprintf("避开深夜，推迟到 %d 点", e.cfg.MorningHour))
	}
	return domain.TimingRecommendation{
		RecommendedTime:  candidate,
		Confidence:       baseConfidence,
		Reasoning:        reasons,
		AlternativeTimes: alternatives(now, candidate, nil),
	}
}

func (e *Engine) lateNight(hour int) bool {
	start, end := e.cfg.LateNightStartHour, e.cfg.LateNightEndHour
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// deferral HIGH 不会走到这里
func (e *Engine) deferral(candidate time.Time, pref domain.TimingPreference,
	behavior *domain.UserBehavior,
) (time.Time, string, bool) {
	qh := behavior.QuietHours
	configured := qh != nil && qh.IsConfigured()
	if pref.RespectQuietHours && configured && qh.Contains(candidate) {
		return qh.NextEnd(candidate), "处于免打扰时段", true
	}
	if !pref.ConsiderActivity {
		return time.Time{}, "", false
	}
	score, ok := behavior.ActivityScore(candidate.Weekday(), candidate.Hour())
	if !ok || score >= e.cfg.LowActivityThreshold {
		return time.Time{}, "", false
	}
	reason := fmt.Sprintf("该时段活跃度 %.2f 过低", score)
	if configured {
		return qh.NextEnd(candidate), reason, true
	}
	return candidate.Add(time.Duration(e.cfg.FlatDeferMinutes) * time.Minute), reason, true
}

func confidence(behavior *domain.UserBehavior, typ domain.NotificationType, at time.Time) float64 {
	c := baseConfidence
	if score, ok := behavior.ActivityScore(at.Weekday(), at.Hour()); ok {
		c += activityWeight * clamp01(score)
	}
	if rate, ok := behavior.ResponseRateAt(typ, at.Hour()); ok {
		c += responseWeight * clamp01(rate)
	}
	return clamp01(c)
}

// alternatives 优先用偏好小时，不足两个时补上 +30 和 +60 分钟
func alternatives(now, chosen time.Time, preferred []int) []time.Time {
	res := make([]time.Time, 0, maxAlternatives)
	for _, h := range preferred {
		if h < 0 || h > 23 {
			continue
		}
		t := domain.AtHour(chosen, h)
		if !t.After(now) {
			t = domain.AtHour(chosen.AddDate(0, 0, 1), h)
		}
		if t.Equal(chosen) || containsTime(res, t) {
			continue
		}
		res = append(res, t)
	}
	slices.SortFunc(res, func(a, b time.Time) int {
		return a.Compare(b)
	})
	if len(res) > maxAlternatives {
		res = res[:maxAlternatives]
	}
	if len(res) < minPreferredAlters {
		for _, d := range []time.Duration{30 * time.Minute, time.Hour} {
			t := chosen.Add(d)
			if len(res) < maxAlternatives && !containsTime(res, t) {
				res = append(res, t)
			}
		}
	}
	return res
}

func containsTime(ts []time.Time, t time.Time) bool {
	return slices.ContainsFunc(ts, t.Equal)
}

// snapToHour 对齐到同一天的整点，已经在该小时内则不动，早于 earliest 时顺延一天
func snapToHour(t time.Time, hour int, earliest time.Time) time.Time {
	if t.Hour() == hour {
		return t
	}
	res := domain.AtHour(t, hour)
	if res.Before(earliest) {
		res = domain.AtHour(t.AddDate(0, 0, 1), hour)
	}
	return res
}

func latest(now, scheduled time.Time) time.Time {
	if scheduled.After(now) {
		return scheduled
	}
	return now
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
