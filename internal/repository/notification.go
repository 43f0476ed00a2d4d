package repository

import (
	"context"
	"database/sql"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/gotomicro/ego/core/elog"
)

// NotificationRepository 通知仓储接口
//
//go:generate mockgen -source=./notification.go -destination=./mocks/notification.mock.go -package=repomocks
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	GetByID(ctx context.Context, id uint64) (domain.Notification, error)

	// MarkAsDelivered 保存终态和各渠道结果
	MarkAsDelivered(ctx context.Context, id uint64, results []domain.ChannelResult) error
	MarkAsFailed(ctx context.Context, id uint64, reason string, results []domain.ChannelResult) error
	// UpdateScheduling 延后到 scheduledFor 再投递
	UpdateScheduling(ctx context.Context, id uint64, scheduledFor time.Time) error

	FindScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error)
}

type notificationRepository struct {
	dao    dao.NotificationDAO
	logger *elog.Component
}

func NewNotificationRepository(d dao.NotificationDAO) NotificationRepository {
	return &notificationRepository{
		dao:    d,
		logger: elog.DefaultLogger,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	entity, err := r.dao.Create(ctx, r.toEntity(n))
	if err != nil {
		return domain.Notification{}, err
	}
	return r.toDomain(entity), nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint64) (domain.Notification, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	return r.toDomain(entity), nil
}

func (r *notificationRepository) MarkAsDelivered(ctx context.Context, id uint64, results []domain.ChannelResult) error {
	val, err := domain.MarshalChannelResults(results)
	if err != nil {
		return err
	}
	return r.dao.MarkDelivered(ctx, id, val)
}

func (r *notificationRepository) MarkAsFailed(ctx context.Context, id uint64, reason string, results []domain.ChannelResult) error {
	val, err := domain.MarshalChannelResults(results)
	if err != nil {
		return err
	}
	return r.dao.MarkFailed(ctx, id, reason, val)
}

func (r *notificationRepository) UpdateScheduling(ctx context.Context, id uint64, scheduledFor time.Time) error {
	return r.dao.UpdateScheduling(ctx, id, scheduledFor.UnixMilli())
}

func (r *notificationRepository) FindScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error) {
	entities, err := r.dao.FindScheduled(ctx, now.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.Notification) domain.Notification {
		return r.toDomain(src)
	}), nil
}

func (r *notificationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error) {
	entities, err := r.dao.FindExpired(ctx, now.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.Notification) domain.Notification {
		return r.toDomain(src)
	}), nil
}

func (r *notificationRepository) toEntity(n domain.Notification) dao.Notification {
	channels := slice.Map(n.Channels, func(_ int, src domain.Channel) string {
		return src.String()
	})
	entity := dao.Notification{
		ID:            n.ID,
		UserID:        n.UserID,
		Title:         n.Title,
		Message:       n.Message,
		Type:          string(n.Type),
		Priority:      string(n.Priority),
		Channels:      sqlx.JsonColumn[[]string]{Val: channels, Valid: len(channels) > 0},
		Metadata:      sqlx.JsonColumn[map[string]string]{Val: n.Metadata, Valid: len(n.Metadata) > 0},
		Status:        n.Status.String(),
		ScheduledFor:  toMillis(n.ScheduledFor),
		ExpiresAt:     toMillis(n.ExpiresAt),
		FailureReason: n.FailureReason,
	}
	if len(n.ChannelResults) > 0 {
		val, err := domain.MarshalChannelResults(n.ChannelResults)
		if err == nil {
			entity.ChannelResults = sql.NullString{String: val, Valid: true}
		}
	}
	return entity
}

func (r *notificationRepository) toDomain(n dao.Notification) domain.Notification {
	results, err := domain.UnmarshalChannelResults(n.ChannelResults.String)
	if err != nil {
		r.logger.Warn("渠道结果格式错误",
			elog.Any("notificationId", n.ID),
			elog.FieldErr(err))
	}
	return domain.Notification{
		NotificationRequest: domain.NotificationRequest{
			ID:       n.ID,
			UserID:   n.UserID,
			Title:    n.Title,
			Message:  n.Message,
			Type:     domain.NotificationType(n.Type),
			Priority: domain.Priority(n.Priority),
			Channels: slice.Map(n.Channels.Val, func(_ int, src string) domain.Channel {
				return domain.Channel(src)
			}),
			Metadata: n.Metadata.Val,
		},
		Status:         domain.SendStatus(n.Status),
		ScheduledFor:   fromMillis(n.ScheduledFor),
		ExpiresAt:      fromMillis(n.ExpiresAt),
		CreatedAt:      fromMillis(n.Ctime),
		FailureReason:  n.FailureReason,
		ChannelResults: results,
	}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
