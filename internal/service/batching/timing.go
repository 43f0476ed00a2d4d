package batching

import (
	"slices"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"github.com/gotomicro/ego/core/elog"
)

// OptimizeBatchTiming 先移出免打扰时段，再对齐到偏好的小时
// HIGH 批次无论偏好如何都不会晚于创建后的上限时间
func (e *Engine) OptimizeBatchTiming(batch domain.NotificationBatch, timezone string,
	prefs *domain.BatchTimingPreferences,
) time.Time {
	scheduled := batch.ScheduledFor
	if scheduled.IsZero() {
		scheduled = e.now()
	}
	loc, err := domain.LoadLocation(timezone)
	if err != nil {
		e.logger.Warn("时区不合法，按 UTC 处理",
			elog.Any("batchId", batch.ID),
			elog.String("timezone", timezone))
		loc = time.UTC
	}

	local := scheduled.In(loc)
	if prefs != nil {
		if prefs.QuietHours != nil && prefs.QuietHours.Contains(local) {
			local = prefs.QuietHours.NextEnd(local)
		}
		local = nextPreferredHour(local, prefs.PreferredHours)
	}
	res := local.In(scheduled.Location())

	if batch.Priority.IsHighOrAbove() {
		created := batch.CreatedAt
		if created.IsZero() {
			created = e.now()
		}
		ceiling := created.Add(time.Duration(e.cfg.HighPriorityCeilingMinutes) * time.Minute)
		if res.After(ceiling) {
			res = ceiling.In(scheduled.Location())
		}
	}
	return res
}

// nextPreferredHour 当前小时不在偏好里时，移到当天下一个偏好小时，没有就顺延到次日第一个
func nextPreferredHour(t time.Time, hours []int) time.Time {
	valid := make([]int, 0, len(hours))
	for _, h := range hours {
		if h >= 0 && h < 24 {
			valid = append(valid, h)
		}
	}
	if len(valid) == 0 || slices.Contains(valid, t.Hour()) {
		return t
	}
	slices.Sort(valid)
	for _, h := range valid {
		if h > t.Hour() {
			return domain.AtHour(t, h)
		}
	}
	return domain.AtHour(t.AddDate(0, 0, 1), valid[0])
}
