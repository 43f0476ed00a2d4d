package timing

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/repository"
	repomocks "gitee.com/flycash/care-notification/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// 2025-03-03 是星期一
func monday(hour, minute int) time.Time {
	return time.Date(2025, 3, 3, hour, minute, 0, 0, time.UTC)
}

func newEngine(t *testing.T, now time.Time, repo repository.BehaviorRepository) *Engine {
	t.Helper()
	registry, err := DefaultRegistry()
	require.NoError(t, err)
	e, err := NewEngine(registry, DefaultConfig(), repo, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return e
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r, err := DefaultRegistry()
	require.NoError(t, err)

	task := r.Get(domain.TypeTaskReminder)
	assert.Equal(t, 10, task.MinDelayMinutes)
	assert.Equal(t, 240, task.MaxDelayMinutes)
	emergency := r.Get(domain.TypeEmergencyAlert)
	assert.False(t, emergency.RespectQuietHours || emergency.ConsiderActivity || emergency.OptimizeForResponse)
	assert.Equal(t, 120, r.Get(domain.TypeMedicationReminder).MaxDelayMinutes)

	unknown := r.Get(domain.NotificationType("UNKNOWN"))
	assert.Equal(t, domain.NotificationType("UNKNOWN"), unknown.Type)
	assert.True(t, unknown.RespectQuietHours)

	_, err = NewRegistry([]domain.TimingPreference{{Type: domain.TypeTaskReminder, MinDelayMinutes: 30, MaxDelayMinutes: 10}})
	assert.ErrorIs(t, err, errs.ErrInvalidRule)
	_, err = ParseRegistry([]byte("preferences: ["))
	assert.ErrorIs(t, err, errs.ErrInvalidRule)
}

func TestEngine_CalculateOptimalTimingBasic(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		now       time.Time
		scheduled time.Time
		typ       domain.NotificationType
		priority  domain.Priority

		want           time.Time
		wantConfidence float64
	}{
		{
			name:           "深夜的任务提醒推到次日8点",
			now:            monday(23, 30),
			typ:            domain.TypeTaskReminder,
			priority:       domain.PriorityNormal,
			want:           time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC),
			wantConfidence: 0.5,
		},
		{
			name:           "凌晨推到当天8点",
			now:            monday(3, 0),
			typ:            domain.TypeCareGroupUpdate,
			priority:       domain.PriorityLow,
			want:           monday(8, 0),
			wantConfidence: 0.5,
		},
		{
			name:           "白天只加最小延迟",
			now:            monday(10, 0),
			typ:            domain.TypeCareGroupUpdate,
			priority:       domain.PriorityNormal,
			want:           monday(10, 5),
			wantConfidence: 0.5,
		},
		{
			name:           "指定时间晚于当前时间",
			now:            monday(10, 0),
			scheduled:      monday(15, 0),
			typ:            domain.TypeTaskReminder,
			priority:       domain.PriorityNormal,
			want:           monday(15, 10),
			wantConfidence: 0.5,
		},
		{
			name:           "URGENT立即发送",
			now:            monday(23, 30),
			typ:            domain.TypeTaskReminder,
			priority:       domain.PriorityUrgent,
			want:           monday(23, 30),
			wantConfidence: 1,
		},
		{
			name:           "紧急告警类型立即发送",
			now:            monday(23, 30),
			typ:            domain.TypeEmergencyAlert,
			priority:       domain.PriorityNormal,
			want:           monday(23, 30),
			wantConfidence: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newEngine(t, tc.now, nil)
			rec := e.CalculateOptimalTiming(7, tc.typ, tc.priority, tc.scheduled, nil)
			assert.True(t, tc.want.Equal(rec.RecommendedTime), "want %s, got %s", tc.want, rec.RecommendedTime)
			assert.InDelta(t, tc.wantConfidence, rec.Confidence, 1e-9)
			assert.False(t, rec.ShouldDefer)
			assert.NotEmpty(t, rec.Reasoning)
		})
	}
}

func TestEngine_CalculateOptimalTimingBasicAlternatives(t *testing.T) {
	t.Parallel()
	e := newEngine(t, monday(23, 30), nil)
	rec := e.CalculateOptimalTiming(7, domain.TypeTaskReminder, domain.PriorityNormal, time.Time{}, nil)
	want := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	require.Len(t, rec.AlternativeTimes, 2)
	assert.Equal(t, want.Add(30*time.Minute), rec.AlternativeTimes[0])
	assert.Equal(t, want.Add(time.Hour), rec.AlternativeTimes[1])
}

func TestEngine_CalculateOptimalTimingBehavior(t *testing.T) {
	t.Parallel()
	overnight := &domain.QuietHours{Start: "22:00", End: "07:00"}

	testCases := []struct {
		name     string
		now      time.Time
		typ      domain.NotificationType
		priority domain.Priority
		behavior domain.UserBehavior

		want           time.Time
		wantDefer      bool
		wantConfidence float64
	}{
		{
			name:     "对齐活跃小时再对齐响应率",
			now:      monday(9, 0),
			typ:      domain.TypeAppointmentReminder,
			priority: domain.PriorityNormal,
			behavior: domain.UserBehavior{
				ActivityPatterns: []domain.ActivityPattern{
					{DayOfWeek: time.Monday, Hour: 10, Score: 0.4},
					{DayOfWeek: time.Monday, Hour: 11, Score: 0.9},
				},
				ResponseRates: []domain.ResponseRate{
					{Type: domain.TypeAppointmentReminder, Hour: 12, Rate: 0.8},
					{Type: domain.TypeAppointmentReminder, Hour: 8, Rate: 0.3},
				},
			},
			want:           monday(12, 0),
			wantConfidence: 0.66,
		},
		{
			name:     "不超过最大延迟",
			now:      monday(9, 0),
			typ:      domain.TypeMedicationReminder,
			priority: domain.PriorityNormal,
			behavior: domain.UserBehavior{
				ResponseRates: []domain.ResponseRate{
					{Type: domain.TypeMedicationReminder, Hour: 18, Rate: 0.9},
				},
			},
			want:           monday(11, 0),
			wantConfidence: 0.5,
		},
		{
			name:           "免打扰时段延后到结束",
			now:            monday(22, 30),
			typ:            domain.TypeSystemNotification,
			priority:       domain.PriorityNormal,
			behavior:       domain.UserBehavior{QuietHours: overnight},
			want:           time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC),
			wantDefer:      true,
			wantConfidence: 0.5,
		},
		{
			name:           "HIGH不做延后检查",
			now:            monday(22, 30),
			typ:            domain.TypeSystemNotification,
			priority:       domain.PriorityHigh,
			behavior:       domain.UserBehavior{QuietHours: overnight},
			want:           monday(22, 45),
			wantConfidence: 0.5,
		},
		{
			name:     "活跃度过低固定延后两小时",
			now:      monday(8, 50),
			typ:      domain.TypeSystemNotification,
			priority: domain.PriorityLow,
			behavior: domain.UserBehavior{
				ActivityPatterns: []domain.ActivityPattern{
					{DayOfWeek: time.Monday, Hour: 9, Score: 0.1},
				},
			},
			want:           monday(11, 5),
			wantDefer:      true,
			wantConfidence: 0.5,
		},
		{
			name:     "活跃度达标不延后",
			now:      monday(8, 50),
			typ:      domain.TypeSystemNotification,
			priority: domain.PriorityLow,
			behavior: domain.UserBehavior{
				ActivityPatterns: []domain.ActivityPattern{
					{DayOfWeek: time.Monday, Hour: 9, Score: 1},
				},
			},
			want:           monday(9, 5),
			wantConfidence: 0.8,
		},
		{
			name:     "不关心免打扰的类型",
			now:      monday(22, 30),
			typ:      domain.TypeCareGroupUpdate,
			priority: domain.PriorityNormal,
			behavior: domain.UserBehavior{
				QuietHours: overnight,
			},
			want:           monday(22, 35),
			wantConfidence: 0.5,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newEngine(t, tc.now, nil)
			behavior := tc.behavior
			rec := e.CalculateOptimalTiming(7, tc.typ, tc.priority, time.Time{}, &behavior)
			assert.True(t, tc.want.Equal(rec.RecommendedTime), "want %s, got %s", tc.want, rec.RecommendedTime)
			assert.Equal(t, tc.wantDefer, rec.ShouldDefer)
			assert.Equal(t, tc.wantDefer, rec.DeferReason != "")
			assert.InDelta(t, tc.wantConfidence, rec.Confidence, 1e-9)
			assert.LessOrEqual(t, len(rec.AlternativeTimes), 3)
		})
	}
}

func TestEngine_CalculateOptimalTimingTimezone(t *testing.T) {
	t.Parallel()
	// 上海时间 22:30
	e := newEngine(t, monday(14, 30), nil)
	behavior := &domain.UserBehavior{
		Timezone:   "Asia/Shanghai",
		QuietHours: &domain.QuietHours{Start: "22:00", End: "07:00"},
	}
	rec := e.CalculateOptimalTiming(7, domain.TypeSystemNotification, domain.PriorityNormal, time.Time{}, behavior)
	assert.True(t, rec.ShouldDefer)
	// 上海时间次日 07:00
	assert.True(t, monday(23, 0).Equal(rec.RecommendedTime), "got %s", rec.RecommendedTime)
}

func TestEngine_CalculateOptimalTimingPreferredAlternatives(t *testing.T) {
	t.Parallel()
	e := newEngine(t, monday(9, 0), nil)
	behavior := &domain.UserBehavior{PreferredHours: []int{20, 8, 12, 19, 25}}
	rec := e.CalculateOptimalTiming(7, domain.TypeCareGroupUpdate, domain.PriorityNormal, time.Time{}, behavior)

	assert.Equal(t, monday(9, 5), rec.RecommendedTime)
	assert.Equal(t, []time.Time{monday(12, 0), monday(19, 0), monday(20, 0)}, rec.AlternativeTimes)
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		priority domain.Priority
		mock     func(ctrl *gomock.Controller) repository.BehaviorRepository

		wantConfidence float64
		want           time.Time
	}{
		{
			name:     "有行为数据",
			priority: domain.PriorityNormal,
			mock: func(ctrl *gomock.Controller) repository.BehaviorRepository {
				repo := repomocks.NewMockBehaviorRepository(ctrl)
				repo.EXPECT().Get(gomock.Any(), int64(7)).Return(domain.UserBehavior{
					UserID: 7,
					ActivityPatterns: []domain.ActivityPattern{
						{DayOfWeek: time.Monday, Hour: 10, Score: 1},
					},
				}, nil)
				return repo
			},
			wantConfidence: 0.8,
			want:           monday(10, 0),
		},
		{
			name:     "没有行为数据",
			priority: domain.PriorityNormal,
			mock: func(ctrl *gomock.Controller) repository.BehaviorRepository {
				repo := repomocks.NewMockBehaviorRepository(ctrl)
				repo.EXPECT().Get(gomock.Any(), int64(7)).Return(domain.UserBehavior{}, errs.ErrBehaviorNotFound)
				return repo
			},
			wantConfidence: 0.5,
			want:           monday(9, 10),
		},
		{
			name:     "加载失败退化为基础时机",
			priority: domain.PriorityNormal,
			mock: func(ctrl *gomock.Controller) repository.BehaviorRepository {
				repo := repomocks.NewMockBehaviorRepository(ctrl)
				repo.EXPECT().Get(gomock.Any(), int64(7)).Return(domain.UserBehavior{}, errors.New("db down"))
				return repo
			},
			wantConfidence: 0.5,
			want:           monday(9, 10),
		},
		{
			name:     "URGENT不加载行为数据",
			priority: domain.PriorityUrgent,
			mock: func(ctrl *gomock.Controller) repository.BehaviorRepository {
				return repomocks.NewMockBehaviorRepository(ctrl)
			},
			wantConfidence: 1,
			want:           monday(9, 0),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			e := newEngine(t, monday(9, 0), tc.mock(ctrl))
			rec := e.Recommend(context.Background(), 7, domain.TypeTaskReminder, tc.priority, time.Time{})
			assert.InDelta(t, tc.wantConfidence, rec.Confidence, 1e-9)
			assert.True(t, tc.want.Equal(rec.RecommendedTime), "want %s, got %s", tc.want, rec.RecommendedTime)
		})
	}
}
