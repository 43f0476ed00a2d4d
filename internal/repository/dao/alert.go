package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

//go:generate mockgen -source=./alert.go -destination=./mocks/alert.mock.go -package=daomocks
type AlertDAO interface {
	// Create 主键冲突时返回 errs.ErrAlertDuplicate
	Create(ctx context.Context, alert EmergencyAlert) (EmergencyAlert, error)
	GetByID(ctx context.Context, id uint64) (EmergencyAlert, error)
	// FindEvents 按级别升序
	FindEvents(ctx context.Context, alertID uint64) ([]EscalationEvent, error)
	// AppendEvent 记录一次级别触发，同时推进告警的当前级别和状态
	AppendEvent(ctx context.Context, evt EscalationEvent, status string) error
	// Acknowledge 只有未确认的告警才能确认成功
	Acknowledge(ctx context.Context, id uint64, by, message string, at int64) error
}

// EmergencyAlert 紧急告警表
type EmergencyAlert struct {
	ID                 uint64 `gorm:"primaryKey;comment:'雪花算法ID'"`
	UserID             int64  `gorm:"type:BIGINT;NOT NULL;index:idx_user_id;comment:'被照护人'"`
	PatientName        string `gorm:"type:VARCHAR(128);comment:'被照护人姓名'"`
	Type               string `gorm:"type:VARCHAR(64);NOT NULL;comment:'告警类型'"`
	Severity           string `gorm:"type:ENUM('LOW','MEDIUM','HIGH','CRITICAL');NOT NULL;comment:'严重程度'"`
	Message            string `gorm:"type:TEXT;comment:'告警内容'"`
	RuleID             string `gorm:"type:VARCHAR(64);comment:'命中的升级规则'"`
	Status             string `gorm:"type:ENUM('OPEN','ACKNOWLEDGED','EXHAUSTED');DEFAULT:'OPEN';index:idx_status;comment:'告警状态'"`
	CurrentLevel       int    `gorm:"type:INT;NOT NULL;DEFAULT:0;comment:'最近一次触发的级别'"`
	TriggeredAt        int64
	AcknowledgedAt     int64
	AcknowledgedBy     string `gorm:"type:VARCHAR(128)"`
	AcknowledgeMessage string `gorm:"type:VARCHAR(512)"`
	// Contacts 触发时的联系人快照，告警不在本实例内存中时用它恢复
	Contacts sqlx.JsonColumn[[]domain.EmergencyContact] `gorm:"type:JSON;comment:'联系人快照'"`
	Ctime    int64
	Utime    int64
}

// EscalationEvent 升级记录表，只追加
type EscalationEvent struct {
	ID            uint64                                        `gorm:"primaryKey;comment:'雪花算法ID'"`
	AlertID       uint64                                        `gorm:"NOT NULL;uniqueIndex:idx_alert_level,priority:1"`
	Level         int                                           `gorm:"NOT NULL;uniqueIndex:idx_alert_level,priority:2"`
	FiredAt       int64                                         `gorm:"NOT NULL"`
	Notifications sqlx.JsonColumn[[]domain.ContactNotification] `gorm:"type:JSON;comment:'每个联系人每个渠道的投递结果'"`
	Ctime         int64
}

type alertDAO struct {
	db *egorm.Component
}

func NewAlertDAO(db *egorm.Component) AlertDAO {
	return &alertDAO{db: db}
}

func (d *alertDAO) Create(ctx context.Context, alert EmergencyAlert) (EmergencyAlert, error) {
	now := time.Now().UnixMilli()
	alert.Ctime, alert.Utime = now, now
	err := d.db.WithContext(ctx).Create(&alert).Error
	if isUniqueConstraintError(err) {
		return EmergencyAlert{}, fmt.Errorf("%w: id = %d", errs.ErrAlertDuplicate, alert.ID)
	}
	return alert, err
}

func (d *alertDAO) GetByID(ctx context.Context, id uint64) (EmergencyAlert, error) {
	var alert EmergencyAlert
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EmergencyAlert{}, fmt.Errorf("%w: id = %d", errs.ErrAlertNotFound, id)
	}
	return alert, err
}

func (d *alertDAO) FindEvents(ctx context.Context, alertID uint64) ([]EscalationEvent, error) {
	var res []EscalationEvent
	err := d.db.WithContext(ctx).
		Where("alert_id = ?", alertID).
		Order("level ASC").
		Find(&res).Error
	return res, err
}

func (d *alertDAO) AppendEvent(ctx context.Context, evt EscalationEvent, status string) error {
	now := time.Now().UnixMilli()
	evt.Ctime = now
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&evt).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: alert = %d, level = %d", errs.ErrLevelAlreadyFired, evt.AlertID, evt.Level)
			}
			return err
		}
		// 已经确认的告警不能再推进
		res := tx.Model(&EmergencyAlert{}).
			Where("id = ? AND status <> ? AND current_level < ?",
				evt.AlertID, domain.AlertStatusAcknowledged, evt.Level).
			Updates(map[string]any{
				"current_level": evt.Level,
				"status":        status,
				"utime":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: id = %d", errs.ErrAlertClosed, evt.AlertID)
		}
		return nil
	})
}

func (d *alertDAO) Acknowledge(ctx context.Context, id uint64, by, message string, at int64) error {
	res := d.db.WithContext(ctx).Model(&EmergencyAlert{}).
		Where("id = ? AND status <> ?", id, domain.AlertStatusAcknowledged).
		Updates(map[string]any{
			"status":              domain.AlertStatusAcknowledged,
			"acknowledged_at":     at,
			"acknowledged_by":     by,
			"acknowledge_message": message,
			"utime":               time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id = %d", errs.ErrAlertClosed, id)
	}
	return nil
}
