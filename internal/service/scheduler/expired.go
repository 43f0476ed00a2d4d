package scheduler

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
)

// ExpiredNotificationJob 把过期还没投递的通知标记为失败，由 ecron 定时调用
type ExpiredNotificationJob struct {
	repo      repository.NotificationRepository
	batchSize int
	now       func() time.Time
	logger    *elog.Component
}

func NewExpiredNotificationJob(repo repository.NotificationRepository) *ExpiredNotificationJob {
	return &ExpiredNotificationJob{
		repo:      repo,
		batchSize: 100,
		now:       time.Now,
		logger:    elog.DefaultLogger,
	}
}

func (j *ExpiredNotificationJob) Do(ctx context.Context) error {
	total := 0
	for {
		cnt, err := j.oneLoop(ctx)
		total += cnt
		if err != nil {
			// 失败的记录下一次还会被查出来，这一轮先结束
			j.logger.Error("标记过期通知失败", elog.Int("marked", total), elog.FieldErr(err))
			return err
		}
		if cnt < j.batchSize {
			if total > 0 {
				j.logger.Info("过期通知已标记", elog.Int("count", total))
			}
			return nil
		}
	}
}

func (j *ExpiredNotificationJob) oneLoop(ctx context.Context) (int, error) {
	findCtx, cancel := context.WithTimeout(ctx, time.Second*3)
	ns, err := j.repo.FindExpired(findCtx, j.now(), j.batchSize)
	cancel()
	if err != nil {
		return 0, err
	}
	var failures error
	for i := range ns {
		err = j.repo.MarkAsFailed(ctx, ns[i].ID, domain.FailureReasonExpired, ns[i].ChannelResults)
		if err != nil {
			failures = multierror.Append(failures, fmt.Errorf("通知 %d: %w", ns[i].ID, err))
		}
	}
	return len(ns), failures
}
