package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

//go:generate mockgen -source=./notification.go -destination=./mocks/notification.mock.go -package=daomocks
type NotificationDAO interface {
	Create(ctx context.Context, data Notification) (Notification, error)
	GetByID(ctx context.Context, id uint64) (Notification, error)

	// MarkDelivered 至少一个渠道成功
	MarkDelivered(ctx context.Context, id uint64, channelResults string) error
	// MarkFailed 全部失败、过期或者请求不合法
	MarkFailed(ctx context.Context, id uint64, reason, channelResults string) error
	// UpdateScheduling 延后到 scheduledFor 再投递
	UpdateScheduling(ctx context.Context, id uint64, scheduledFor int64) error

	// FindScheduled 到期需要重新投递的通知
	FindScheduled(ctx context.Context, now int64, limit int) ([]Notification, error)
	// FindExpired 过期还没有投递出去的通知
	FindExpired(ctx context.Context, now int64, limit int) ([]Notification, error)
}

// Notification 通知记录表
type Notification struct {
	ID             uint64                             `gorm:"primaryKey;comment:'雪花算法ID'"`
	UserID         int64                              `gorm:"type:BIGINT;NOT NULL;index:idx_user_id;comment:'接收者'"`
	Title          string                             `gorm:"type:VARCHAR(256);comment:'标题'"`
	Message        string                             `gorm:"type:TEXT;comment:'正文'"`
	Type           string                             `gorm:"type:VARCHAR(64);NOT NULL;comment:'通知类型'"`
	Priority       string                             `gorm:"type:ENUM('LOW','NORMAL','HIGH','URGENT');DEFAULT:'NORMAL';comment:'优先级'"`
	Channels       sqlx.JsonColumn[[]string]          `gorm:"type:JSON;comment:'调用方指定的渠道'"`
	Metadata       sqlx.JsonColumn[map[string]string] `gorm:"type:JSON;comment:'业务元数据，用药ID、预约ID等'"`
	Status         string                             `gorm:"type:ENUM('PENDING','SCHEDULED','DELIVERED','FAILED');DEFAULT:'PENDING';index:idx_status_scheduled,priority:1;index:idx_status_expires,priority:1;comment:'投递状态'"`
	ScheduledFor   int64                              `gorm:"index:idx_status_scheduled,priority:2;comment:'延后投递的时间'"`
	ExpiresAt      int64                              `gorm:"index:idx_status_expires,priority:2;comment:'过期时间，0 表示不过期'"`
	FailureReason  string                             `gorm:"type:VARCHAR(128);comment:'失败原因'"`
	ChannelResults sql.NullString                     `gorm:"type:JSON;comment:'最近一次投递各渠道的结果'"`
	Ctime          int64
	Utime          int64
}

type notificationDAO struct {
	db *egorm.Component
}

func NewNotificationDAO(db *egorm.Component) NotificationDAO {
	return &notificationDAO{
		db: db,
	}
}

func (d *notificationDAO) Create(ctx context.Context, data Notification) (Notification, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	if data.Status == "" {
		data.Status = domain.SendStatusPending.String()
	}
	err := d.db.WithContext(ctx).Create(&data).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return Notification{}, fmt.Errorf("%w", errs.ErrNotificationDuplicate)
		}
		return Notification{}, fmt.Errorf("%w: %w", errs.ErrCreateNotificationFailed, err)
	}
	return data, nil
}

func (d *notificationDAO) GetByID(ctx context.Context, id uint64) (Notification, error) {
	var n Notification
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Notification{}, fmt.Errorf("%w: id = %d", errs.ErrNotificationNotFound, id)
		}
		return Notification{}, err
	}
	return n, nil
}

func (d *notificationDAO) MarkDelivered(ctx context.Context, id uint64, channelResults string) error {
	return d.update(ctx, id, map[string]any{
		"status":          domain.SendStatusDelivered.String(),
		"failure_reason":  "",
		"channel_results": channelResults,
	})
}

func (d *notificationDAO) MarkFailed(ctx context.Context, id uint64, reason, channelResults string) error {
	return d.update(ctx, id, map[string]any{
		"status":          domain.SendStatusFailed.String(),
		"failure_reason":  reason,
		"channel_results": channelResults,
	})
}

func (d *notificationDAO) UpdateScheduling(ctx context.Context, id uint64, scheduledFor int64) error {
	return d.update(ctx, id, map[string]any{
		"status":         domain.SendStatusScheduled.String(),
		"scheduled_for":  scheduledFor,
		"failure_reason": domain.FailureReasonDeferred,
	})
}

func (d *notificationDAO) update(ctx context.Context, id uint64, columns map[string]any) error {
	columns["utime"] = time.Now().UnixMilli()
	res := d.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id = %d", errs.ErrNotificationNotFound, id)
	}
	return nil
}

func (d *notificationDAO) FindScheduled(ctx context.Context, now int64, limit int) ([]Notification, error) {
	var res []Notification
	err := d.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", domain.SendStatusScheduled.String(), now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (d *notificationDAO) FindExpired(ctx context.Context, now int64, limit int) ([]Notification, error) {
	var res []Notification
	err := d.db.WithContext(ctx).
		Where("status IN ? AND expires_at > 0 AND expires_at <= ?",
			[]string{domain.SendStatusPending.String(), domain.SendStatusScheduled.String()}, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

// isUniqueConstraintError 检查是否是唯一索引冲突错误
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if ok := errors.As(err, &me); ok {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}
