package repository

import (
	"context"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ekit/sqlx"
)

// AlertRepository 紧急告警和升级记录
//
//go:generate mockgen -source=./alert.go -destination=./mocks/alert.mock.go -package=repomocks
type AlertRepository interface {
	// Create 连同触发时的联系人一起保存
	Create(ctx context.Context, alert domain.EmergencyAlert, contacts []domain.EmergencyContact) error
	// GetByID 包含全部升级记录
	GetByID(ctx context.Context, id uint64) (domain.EmergencyAlert, error)
	FindContacts(ctx context.Context, id uint64) ([]domain.EmergencyContact, error)
	// AppendEvent 追加一条升级记录，告警的级别和状态以 alert 为准
	AppendEvent(ctx context.Context, alert domain.EmergencyAlert, evt domain.EscalationEvent) error
	Acknowledge(ctx context.Context, alert domain.EmergencyAlert) error
}

type alertRepository struct {
	dao dao.AlertDAO
}

func NewAlertRepository(d dao.AlertDAO) AlertRepository {
	return &alertRepository{dao: d}
}

func (r *alertRepository) Create(ctx context.Context, alert domain.EmergencyAlert, contacts []domain.EmergencyContact) error {
	_, err := r.dao.Create(ctx, dao.EmergencyAlert{
		ID:           alert.ID,
		UserID:       alert.UserID,
		PatientName:  alert.PatientName,
		Type:         string(alert.Type),
		Severity:     string(alert.Severity),
		Message:      alert.Message,
		RuleID:       alert.RuleID,
		Status:       string(alert.Status),
		CurrentLevel: alert.CurrentLevel,
		TriggeredAt:  toMillis(alert.TriggeredAt),
		Contacts: sqlx.JsonColumn[[]domain.EmergencyContact]{
			Val:   contacts,
			Valid: true,
		},
	})
	return err
}

func (r *alertRepository) FindContacts(ctx context.Context, id uint64) ([]domain.EmergencyContact, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entity.Contacts.Val, nil
}

func (r *alertRepository) GetByID(ctx context.Context, id uint64) (domain.EmergencyAlert, error) {
	entity, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.EmergencyAlert{}, err
	}
	events, err := r.dao.FindEvents(ctx, id)
	if err != nil {
		return domain.EmergencyAlert{}, err
	}
	alert := domain.EmergencyAlert{
		ID:                 entity.ID,
		UserID:             entity.UserID,
		PatientName:        entity.PatientName,
		Type:               domain.AlertType(entity.Type),
		Severity:           domain.Severity(entity.Severity),
		Message:            entity.Message,
		TriggeredAt:        fromMillis(entity.TriggeredAt),
		AcknowledgedBy:     entity.AcknowledgedBy,
		AcknowledgeMessage: entity.AcknowledgeMessage,
		Status:             domain.AlertStatus(entity.Status),
		RuleID:             entity.RuleID,
		CurrentLevel:       entity.CurrentLevel,
		EscalationHistory: slice.Map(events, func(_ int, src dao.EscalationEvent) domain.EscalationEvent {
			return domain.EscalationEvent{
				ID:            src.ID,
				AlertID:       src.AlertID,
				Level:         src.Level,
				FiredAt:       fromMillis(src.FiredAt),
				Notifications: src.Notifications.Val,
			}
		}),
	}
	if entity.AcknowledgedAt > 0 {
		at := fromMillis(entity.AcknowledgedAt)
		alert.AcknowledgedAt = &at
	}
	return alert, nil
}

func (r *alertRepository) AppendEvent(ctx context.Context, alert domain.EmergencyAlert, evt domain.EscalationEvent) error {
	return r.dao.AppendEvent(ctx, dao.EscalationEvent{
		ID:      evt.ID,
		AlertID: alert.ID,
		Level:   evt.Level,
		FiredAt: toMillis(evt.FiredAt),
		Notifications: sqlx.JsonColumn[[]domain.ContactNotification]{
			Val:   evt.Notifications,
			Valid: true,
		},
	}, string(alert.Status))
}

func (r *alertRepository) Acknowledge(ctx context.Context, alert domain.EmergencyAlert) error {
	var at int64
	if alert.AcknowledgedAt != nil {
		at = alert.AcknowledgedAt.UnixMilli()
	}
	return r.dao.Acknowledge(ctx, alert.ID, alert.AcknowledgedBy, alert.AcknowledgeMessage, at)
}
