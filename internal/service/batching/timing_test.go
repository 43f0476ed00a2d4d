package batching

import (
	"testing"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEngine_OptimizeBatchTiming(t *testing.T) {
	t.Parallel()
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skip("缺少时区数据")
	}
	overnight := &domain.QuietHours{Start: "22:00", End: "07:00"}

	testCases := []struct {
		name     string
		batch    domain.NotificationBatch
		timezone string
		prefs    *domain.BatchTimingPreferences
		want     time.Time
	}{
		{
			name:  "没有偏好保持原样",
			batch: domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 23, 0, 0, 0, time.UTC)},
			want:  time.Date(2025, 3, 3, 23, 0, 0, 0, time.UTC),
		},
		{
			name:  "免打扰时段内移到结束时间",
			batch: domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC)},
			prefs: &domain.BatchTimingPreferences{QuietHours: overnight},
			want:  time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC),
		},
		{
			name:  "凌晨已经跨天",
			batch: domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC)},
			prefs: &domain.BatchTimingPreferences{QuietHours: overnight},
			want:  time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC),
		},
		{
			name:     "按用户时区判断免打扰",
			batch:    domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)},
			timezone: "Asia/Shanghai",
			prefs:    &domain.BatchTimingPreferences{QuietHours: overnight},
			want:     time.Date(2025, 3, 4, 7, 0, 0, 0, shanghai),
		},
		{
			name:  "移到当天下一个偏好小时",
			batch: domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 10, 20, 0, 0, time.UTC)},
			prefs: &domain.BatchTimingPreferences{PreferredHours: []int{18, 9, 12}},
			want:  time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "偏好小时已过顺延到次日",
			batch: domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 19, 0, 0, 0, time.UTC)},
			prefs: &domain.BatchTimingPreferences{PreferredHours: []int{9, 18}},
			want:  time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "已经在偏好小时内",
			batch: domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 9, 45, 0, 0, time.UTC)},
			prefs: &domain.BatchTimingPreferences{PreferredHours: []int{9, 18}},
			want:  time.Date(2025, 3, 3, 9, 45, 0, 0, time.UTC),
		},
		{
			name: "HIGH批次不超过创建后4小时",
			batch: domain.NotificationBatch{
				Priority:     domain.PriorityHigh,
				CreatedAt:    time.Date(2025, 3, 3, 21, 0, 0, 0, time.UTC),
				ScheduledFor: time.Date(2025, 3, 3, 22, 30, 0, 0, time.UTC),
			},
			prefs: &domain.BatchTimingPreferences{QuietHours: overnight, PreferredHours: []int{9}},
			want:  time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "NORMAL批次不受上限约束",
			batch: domain.NotificationBatch{
				Priority:     domain.PriorityNormal,
				CreatedAt:    time.Date(2025, 3, 3, 21, 0, 0, 0, time.UTC),
				ScheduledFor: time.Date(2025, 3, 3, 22, 30, 0, 0, time.UTC),
			},
			prefs: &domain.BatchTimingPreferences{QuietHours: overnight, PreferredHours: []int{9}},
			want:  time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "时区不合法按UTC",
			batch:    domain.NotificationBatch{ScheduledFor: time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC)},
			timezone: "Mars/Olympus",
			prefs:    &domain.BatchTimingPreferences{QuietHours: overnight},
			want:     time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newEngine(t)
			got := e.OptimizeBatchTiming(tc.batch, tc.timezone, tc.prefs)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}
