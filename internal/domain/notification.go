package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/errs"
)

// Priority 通知优先级
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Rank 数字越大优先级越高，未知优先级按 NORMAL 处理
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return 1
	}
}

// IsHighOrAbove HIGH 和 URGENT 需要尝试全部渠道
func (p Priority) IsHighOrAbove() bool {
	return p.Rank() >= PriorityHigh.Rank()
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// NotificationType 通知类型
type NotificationType string

const (
	TypeMedicationReminder  NotificationType = "MEDICATION_REMINDER"
	TypeMedicationMissed    NotificationType = "MEDICATION_MISSED"
	TypeAppointmentReminder NotificationType = "APPOINTMENT_REMINDER"
	TypeTaskReminder        NotificationType = "TASK_REMINDER"
	TypeCareGroupUpdate     NotificationType = "CARE_GROUP_UPDATE"
	TypeSystemNotification  NotificationType = "SYSTEM_NOTIFICATION"
	TypeEmergencyAlert      NotificationType = "EMERGENCY_ALERT"
)

func (t NotificationType) IsEmergency() bool {
	return t == TypeEmergencyAlert
}

// Channel 通知渠道
type Channel string

const (
	ChannelPush  Channel = "PUSH"
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelInApp Channel = "IN_APP"
)

func (c Channel) String() string {
	return string(c)
}

// 元数据中用于关联通知的键
const (
	MetadataMedicationID  = "medicationId"
	MetadataAppointmentID = "appointmentId"
)

// NotificationRequest 一次投递请求，调用方持有，编排器只读
type NotificationRequest struct {
	ID       uint64
	UserID   int64
	Title    string
	Message  string
	Type     NotificationType
	Priority Priority
	Channels []Channel
	Metadata map[string]string
}

// BypassesPolicy 紧急通知跳过免打扰和时机计算
func (r NotificationRequest) BypassesPolicy() bool {
	return r.Priority == PriorityUrgent || r.Type.IsEmergency()
}

func (r NotificationRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("%w: ID = %d", errs.ErrInvalidParameter, r.ID)
	}
	if r.UserID <= 0 {
		return fmt.Errorf("%w: UserID = %d", errs.ErrInvalidParameter, r.UserID)
	}
	if r.Title == "" && r.Message == "" {
		return fmt.Errorf("%w: 标题和内容不能同时为空", errs.ErrInvalidParameter)
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("%w: Priority = %q", errs.ErrInvalidParameter, r.Priority)
	}
	return nil
}

// SendStatus 通知状态
type SendStatus string

const (
	SendStatusPending   SendStatus = "PENDING"   // 待发送
	SendStatusScheduled SendStatus = "SCHEDULED" // 已延后，等待调度
	SendStatusDelivered SendStatus = "DELIVERED" // 发送成功
	SendStatusFailed    SendStatus = "FAILED"    // 发送失败
)

func (s SendStatus) String() string {
	return string(s)
}

// Notification 通知存储中的记录
type Notification struct {
	NotificationRequest
	Status        SendStatus
	ScheduledFor  time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
	FailureReason string
	// ChannelResults 最近一次投递的审计结果
	ChannelResults []ChannelResult
}

// CorrelationKey 用药或预约ID，用于智能分组
func (n Notification) CorrelationKey() string {
	if id := n.Metadata[MetadataMedicationID]; id != "" {
		return MetadataMedicationID + ":" + id
	}
	if id := n.Metadata[MetadataAppointmentID]; id != "" {
		return MetadataAppointmentID + ":" + id
	}
	return ""
}

// 投递失败原因
const (
	FailureReasonDeferred       = "deferred"
	FailureReasonAllFailed      = "all channels failed"
	FailureReasonNoChannel      = "no channel enabled"
	FailureReasonExpired        = "expired"
	FailureReasonInvalidRequest = "invalid request"
)

// ChannelResult 单个渠道的投递结果
type ChannelResult struct {
	Channel     Channel   `json:"channel"`
	Success     bool      `json:"success"`
	MessageID   string    `json:"messageId,omitempty"`
	Error       string    `json:"error,omitempty"`
	DeliveredAt time.Time `json:"deliveredAt"`
	RetryCount  int       `json:"retryCount"`
}

// DeliveryResult 一次编排的结果，生成后不再修改
type DeliveryResult struct {
	NotificationID uint64
	OverallSuccess bool
	ChannelResults []ChannelResult
	DeliveredAt    time.Time
	FailureReason  string
	// ScheduledFor 仅在延后时设置
	ScheduledFor time.Time
}

func (r DeliveryResult) Deferred() bool {
	return r.FailureReason == FailureReasonDeferred
}

// MarshalChannelResults 审计元数据
func MarshalChannelResults(results []ChannelResult) (string, error) {
	if len(results) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func UnmarshalChannelResults(s string) ([]ChannelResult, error) {
	if s == "" {
		return nil, nil
	}
	var res []ChannelResult
	err := json.Unmarshal([]byte(s), &res)
	return res, err
}
