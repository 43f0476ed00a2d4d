package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/pkg/loopjob"
	"gitee.com/flycash/care-notification/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
	"github.com/meoying/dlock-go"
)

const scheduledDeliveryKey = "care_notification_scheduled_delivery"

// Deliverer 由 delivery.Orchestrator 实现
//
//go:generate mockgen -source=./scheduled_delivery.go -destination=./mocks/deliverer.mock.go -package=schedulermocks
type Deliverer interface {
	Deliver(ctx context.Context, req domain.NotificationRequest, prefs domain.UserPreferences) domain.DeliveryResult
}

type ScheduledDeliveryConfig struct {
	BatchSize int `yaml:"batchSize"`
	// MinLoopDuration 一轮没有取满时至少间隔这么久再查
	MinLoopDuration time.Duration `yaml:"minLoopDuration"`
	LockInterval    time.Duration `yaml:"lockInterval"`
}

func DefaultScheduledDeliveryConfig() ScheduledDeliveryConfig {
	return ScheduledDeliveryConfig{
		BatchSize:       100,
		MinLoopDuration: 5 * time.Second,
		LockInterval:    time.Minute,
	}
}

// ScheduledDeliveryTask 重新投递到期的延后通知
// 多实例部署时通过分布式锁保证同一时间只有一个实例在跑
type ScheduledDeliveryTask struct {
	repo      repository.NotificationRepository
	prefs     repository.PreferenceRepository
	deliverer Deliverer
	dclient   dlock.Client
	cfg       ScheduledDeliveryConfig
	now       func() time.Time
	logger    *elog.Component
}

func NewScheduledDeliveryTask(
	repo repository.NotificationRepository,
	prefs repository.PreferenceRepository,
	deliverer Deliverer,
	dclient dlock.Client,
	cfg ScheduledDeliveryConfig,
) *ScheduledDeliveryTask {
	def := DefaultScheduledDeliveryConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MinLoopDuration <= 0 {
		cfg.MinLoopDuration = def.MinLoopDuration
	}
	if cfg.LockInterval <= 0 {
		cfg.LockInterval = def.LockInterval
	}
	return &ScheduledDeliveryTask{
		repo:      repo,
		prefs:     prefs,
		deliverer: deliverer,
		dclient:   dclient,
		cfg:       cfg,
		now:       time.Now,
		logger:    elog.DefaultLogger.With(elog.String("task", "scheduled_delivery")),
	}
}

// Start ctx 被取消时退出
func (t *ScheduledDeliveryTask) Start(ctx context.Context) {
	go loopjob.NewInfiniteLoop(t.dclient, t.loop, scheduledDeliveryKey).
		WithInterval(t.cfg.LockInterval).
		Run(ctx)
}

func (t *ScheduledDeliveryTask) loop(ctx context.Context) error {
	start := time.Now()
	cnt, err := t.OneLoop(ctx)
	if err == nil && cnt >= t.cfg.BatchSize {
		// 还有积压，马上开始下一轮
		return nil
	}
	if elapsed := time.Since(start); elapsed < t.cfg.MinLoopDuration {
		select {
		case <-ctx.Done():
		case <-time.After(t.cfg.MinLoopDuration - elapsed):
		}
	}
	return err
}

// OneLoop 处理一批到期的通知，返回取到的条数
func (t *ScheduledDeliveryTask) OneLoop(ctx context.Context) (int, error) {
	const findTimeout = 3 * time.Second
	now := t.now()
	findCtx, cancel := context.WithTimeout(ctx, findTimeout)
	ns, err := t.repo.FindScheduled(findCtx, now, t.cfg.BatchSize)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("查询待投递通知失败: %w", err)
	}

	var failures error
	for i := range ns {
		if err = t.deliverOne(ctx, ns[i], now); err != nil {
			failures = multierror.Append(failures, err)
		}
	}
	return len(ns), failures
}

func (t *ScheduledDeliveryTask) deliverOne(ctx context.Context, n domain.Notification, now time.Time) error {
	if !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt) {
		err := t.repo.MarkAsFailed(ctx, n.ID, domain.FailureReasonExpired, n.ChannelResults)
		if err != nil {
			return fmt.Errorf("通知 %d 标记过期失败: %w", n.ID, err)
		}
		return nil
	}
	prefs, err := t.prefs.Get(ctx, n.UserID)
	switch {
	case errors.Is(err, errs.ErrPreferenceNotFound):
		// 没有偏好时按全部渠道关闭处理，编排器会记录 no channel enabled
		prefs = domain.UserPreferences{UserID: n.UserID}
	case err != nil:
		return fmt.Errorf("通知 %d 加载用户偏好失败: %w", n.ID, err)
	}
	res := t.deliverer.Deliver(ctx, n.NotificationRequest, prefs)
	t.logger.Info("延后通知已重新投递",
		elog.Any("notificationId", n.ID),
		elog.Any("success", res.OverallSuccess),
		elog.String("reason", res.FailureReason))
	return nil
}
