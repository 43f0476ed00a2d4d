package audit

import (
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
)

const (
	DeliveryTopic   = "notification_delivery_events"
	EscalationTopic = "emergency_escalation_events"
)

// DeliveryEvent 一次投递编排的最终结果，延后不发事件
type DeliveryEvent struct {
	NotificationID uint64                 `json:"notificationId"`
	UserID         int64                  `json:"userId"`
	Type           string                 `json:"type"`
	Priority       string                 `json:"priority"`
	OverallSuccess bool                   `json:"overallSuccess"`
	FailureReason  string                 `json:"failureReason,omitempty"`
	ChannelResults []domain.ChannelResult `json:"channelResults"`
	DeliveredAt    int64                  `json:"deliveredAt"`
}

func NewDeliveryEvent(req domain.NotificationRequest, res domain.DeliveryResult) DeliveryEvent {
	return DeliveryEvent{
		NotificationID: res.NotificationID,
		UserID:         req.UserID,
		Type:           string(req.Type),
		Priority:       string(req.Priority),
		OverallSuccess: res.OverallSuccess,
		FailureReason:  res.FailureReason,
		ChannelResults: res.ChannelResults,
		DeliveredAt:    res.DeliveredAt.UnixMilli(),
	}
}

// EscalationEvent 告警状态变化：触发某个级别、被确认
type EscalationEvent struct {
	AlertID        uint64                       `json:"alertId"`
	UserID         int64                        `json:"userId"`
	AlertType      string                       `json:"alertType"`
	Severity       string                       `json:"severity"`
	Status         string                       `json:"status"`
	Level          int                          `json:"level"`
	Notifications  []domain.ContactNotification `json:"notifications,omitempty"`
	AcknowledgedBy string                       `json:"acknowledgedBy,omitempty"`
	OccurredAt     int64                        `json:"occurredAt"`
}

func NewLevelFiredEvent(alert domain.EmergencyAlert, evt domain.EscalationEvent) EscalationEvent {
	return EscalationEvent{
		AlertID:       alert.ID,
		UserID:        alert.UserID,
		AlertType:     string(alert.Type),
		Severity:      string(alert.Severity),
		Status:        string(alert.Status),
		Level:         evt.Level,
		Notifications: evt.Notifications,
		OccurredAt:    evt.FiredAt.UnixMilli(),
	}
}

func NewAcknowledgedEvent(alert domain.EmergencyAlert, notices []domain.ContactNotification) EscalationEvent {
	at := time.Now()
	if alert.AcknowledgedAt != nil {
		at = *alert.AcknowledgedAt
	}
	return EscalationEvent{
		AlertID:        alert.ID,
		UserID:         alert.UserID,
		AlertType:      string(alert.Type),
		Severity:       string(alert.Severity),
		Status:         string(alert.Status),
		Level:          alert.CurrentLevel,
		Notifications:  notices,
		AcknowledgedBy: alert.AcknowledgedBy,
		OccurredAt:     at.UnixMilli(),
	}
}
