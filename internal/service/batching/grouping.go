package batching

import (
	"slices"
	"sort"
	"strings"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"github.com/gotomicro/ego/core/elog"
)

// GroupRelatedNotifications 按类型和指定的元数据字段分组，只有一条的组会被丢掉
func (e *Engine) GroupRelatedNotifications(ns []domain.Notification, criteria domain.GroupingCriteria) []domain.NotificationGroup {
	groups := make([]domain.NotificationGroup, 0, 4)
	index := make(map[string]int, len(ns))
	for i := range ns {
		key := groupKey(ns[i], criteria)
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, domain.NotificationGroup{Key: key})
		}
		groups[idx].Notifications = append(groups[idx].Notifications, ns[i])
	}
	return slices.DeleteFunc(groups, func(g domain.NotificationGroup) bool {
		return len(g.Notifications) < 2
	})
}

func groupKey(n domain.Notification, criteria domain.GroupingCriteria) string {
	parts := make([]string, 0, len(criteria.MetadataFields)+1)
	if criteria.ByType {
		parts = append(parts, "type="+string(n.Type))
	}
	for _, f := range criteria.MetadataFields {
		parts = append(parts, f+"="+n.Metadata[f])
	}
	return strings.Join(parts, "|")
}

// CreateFrequencyControlledBatches 按优先级排序后逐小时装桶
// 每小时最多 MaxPerHour 条，超过 MaxPerDay 的全部放到 24 小时后的一个批次
// 上限小于等于 0 表示不限制
func (e *Engine) CreateFrequencyControlledBatches(ns []domain.Notification, userID int64,
	limits domain.FrequencyLimits,
) ([]domain.NotificationBatch, error) {
	if len(ns) == 0 {
		return nil, nil
	}
	sorted := append([]domain.Notification(nil), ns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.Rank() > sorted[j].Priority.Rank()
	})

	daily := len(sorted)
	if limits.MaxPerDay > 0 && limits.MaxPerDay < daily {
		daily = limits.MaxPerDay
	}
	hourly := daily
	if limits.MaxPerHour > 0 && limits.MaxPerHour < hourly {
		hourly = limits.MaxPerHour
	}

	now := e.now()
	batches := make([]domain.NotificationBatch, 0, daily/hourly+2)
	for start, hour := 0, 0; start < daily; start, hour = start+hourly, hour+1 {
		end := min(start+hourly, daily)
		b, err := e.frequencyBatch(sorted[start:end], userID, now, now.Add(time.Duration(hour)*time.Hour))
		if err != nil {
			return nil, err
		}
		b.Metadata[MetadataHourIndex] = hour
		batches = append(batches, b)
	}
	if daily < len(sorted) {
		b, err := e.frequencyBatch(sorted[daily:], userID, now, now.Add(24*time.Hour))
		if err != nil {
			return nil, err
		}
		b.Metadata[MetadataDailyLimitDefer] = true
		batches = append(batches, b)
		e.logger.Info("超出每日上限，剩余通知延后一天",
			elog.Int64("userId", userID),
			elog.Int("deferred", len(sorted)-daily))
	}
	return batches, nil
}

func (e *Engine) frequencyBatch(ns []domain.Notification, userID int64, now, at time.Time) (domain.NotificationBatch, error) {
	batchID, err := e.ids.NextID()
	if err != nil {
		return domain.NotificationBatch{}, err
	}
	contents := append([]domain.Notification(nil), ns...)
	digest := BuildDigest(contents)
	return domain.NotificationBatch{
		ID:            batchID,
		UserID:        userID,
		Notifications: contents,
		BatchType:     domain.BatchTypeFrequencyControlled,
		Strategy:      domain.StrategyTimeBased,
		CreatedAt:     now,
		ScheduledFor:  at,
		Priority:      domain.HighestPriority(contents),
		DigestContent: &digest,
		Metadata:      map[string]any{},
	}, nil
}
