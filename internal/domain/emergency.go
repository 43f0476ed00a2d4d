package domain

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"gitee.com/flycash/care-notification/internal/errs"
)

// AlertType 紧急告警类型
type AlertType string

const (
	AlertTypeFall             AlertType = "FALL_DETECTED"
	AlertTypeMissedMedication AlertType = "MISSED_CRITICAL_MEDICATION"
	AlertTypeVitalSigns       AlertType = "ABNORMAL_VITAL_SIGNS"
	AlertTypePanicButton      AlertType = "PANIC_BUTTON"
	AlertTypeNoActivity       AlertType = "NO_ACTIVITY"
	AlertTypeMedicalEmergency AlertType = "MEDICAL_EMERGENCY"
)

// Severity 告警严重程度
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AlertStatus 告警状态
type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "OPEN"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	// AlertStatusExhausted 所有级别都已触发，不会再自动升级
	AlertStatusExhausted AlertStatus = "EXHAUSTED"
)

// EmergencyAlert 告警在开放期间由升级状态机独占
type EmergencyAlert struct {
	ID                 uint64
	UserID             int64
	PatientName        string
	Type               AlertType
	Severity           Severity
	Message            string
	TriggeredAt        time.Time
	AcknowledgedAt     *time.Time
	AcknowledgedBy     string
	AcknowledgeMessage string
	Status             AlertStatus
	RuleID             string
	// CurrentLevel 最近一次触发的级别，0 表示还没有触发
	CurrentLevel      int
	EscalationHistory []EscalationEvent
}

func (a EmergencyAlert) IsAcknowledged() bool {
	return a.Status == AlertStatusAcknowledged
}

// FiredLevel 某个级别是否已经触发过
func (a EmergencyAlert) FiredLevel(level int) bool {
	for i := range a.EscalationHistory {
		if a.EscalationHistory[i].Level == level {
			return true
		}
	}
	return false
}

// Clone 历史是只追加的，对外暴露时复制一份
func (a EmergencyAlert) Clone() EmergencyAlert {
	res := a
	if a.AcknowledgedAt != nil {
		t := *a.AcknowledgedAt
		res.AcknowledgedAt = &t
	}
	res.EscalationHistory = make([]EscalationEvent, len(a.EscalationHistory))
	for i := range a.EscalationHistory {
		evt := a.EscalationHistory[i]
		evt.Notifications = slices.Clone(evt.Notifications)
		res.EscalationHistory[i] = evt
	}
	return res
}

func (a EmergencyAlert) Validate() error {
	if a.UserID <= 0 {
		return fmt.Errorf("%w: UserID = %d", errs.ErrInvalidParameter, a.UserID)
	}
	if a.Type == "" {
		return fmt.Errorf("%w: Type 不能为空", errs.ErrInvalidParameter)
	}
	if a.Severity == "" {
		return fmt.Errorf("%w: Severity 不能为空", errs.ErrInvalidParameter)
	}
	return nil
}

// SelectorKind 联系人选择器类型
type SelectorKind string

const (
	SelectorExplicit   SelectorKind = "explicit"
	SelectorAllActive  SelectorKind = "all_active"
	SelectorRoleTagged SelectorKind = "role"
)

// ContactSelector Explicit(id) | AllActive | RoleTagged(tag)
type ContactSelector struct {
	Kind      SelectorKind `yaml:"kind"`
	ContactID string       `yaml:"contactId,omitempty"`
	Tag       string       `yaml:"tag,omitempty"`
}

func Explicit(id string) ContactSelector {
	return ContactSelector{Kind: SelectorExplicit, ContactID: id}
}

func AllActive() ContactSelector {
	return ContactSelector{Kind: SelectorAllActive}
}

func RoleTagged(tag string) ContactSelector {
	return ContactSelector{Kind: SelectorRoleTagged, Tag: tag}
}

func (s ContactSelector) Validate() error {
	switch s.Kind {
	case SelectorExplicit:
		if s.ContactID == "" {
			return fmt.Errorf("%w: explicit 选择器缺少 contactId", errs.ErrInvalidRule)
		}
	case SelectorRoleTagged:
		if s.Tag == "" {
			return fmt.Errorf("%w: role 选择器缺少 tag", errs.ErrInvalidRule)
		}
	case SelectorAllActive:
	default:
		return fmt.Errorf("%w: 未知的选择器 %q", errs.ErrInvalidRule, s.Kind)
	}
	return nil
}

// Matches 只判断选择关系，不判断是否启用
func (s ContactSelector) Matches(c EmergencyContact) bool {
	switch s.Kind {
	case SelectorExplicit:
		return c.ID == s.ContactID
	case SelectorAllActive:
		return true
	case SelectorRoleTagged:
		return slices.Contains(c.Roles, s.Tag)
	default:
		return false
	}
}

// EmergencyContact 只读参考数据
// 触发时的快照随告警一起保存，其他实例可以据此恢复
type EmergencyContact struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Relationship string             `json:"relationship"`
	Roles        []string           `json:"roles"`
	Addresses    map[Channel]string `json:"addresses"`
	// Priority 数字越小越优先
	Priority int  `json:"priority"`
	IsActive bool `json:"isActive"`
	// NotificationPreferences 联系人自己对渠道的开关
	NotificationPreferences map[Channel]bool `json:"notificationPreferences"`
}

// Accepts 联系人启用了该渠道并且有地址
func (c EmergencyContact) Accepts(ch Channel) bool {
	return c.NotificationPreferences[ch] && c.Addresses[ch] != ""
}

// ResolveContacts 按选择器解析联系人，只保留启用的，按优先级排序并去重
func ResolveContacts(selectors []ContactSelector, contacts []EmergencyContact) []EmergencyContact {
	seen := make(map[string]struct{}, len(contacts))
	res := make([]EmergencyContact, 0, len(contacts))
	for _, sel := range selectors {
		for _, c := range contacts {
			if !c.IsActive || !sel.Matches(c) {
				continue
			}
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			res = append(res, c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Priority < res[j].Priority
	})
	return res
}

// TriggerConditions 严重程度或类型任意一个命中即可
type TriggerConditions struct {
	Severities []Severity  `yaml:"severities"`
	AlertTypes []AlertType `yaml:"alertTypes"`
}

func (c TriggerConditions) Match(alert EmergencyAlert) bool {
	return slices.Contains(c.Severities, alert.Severity) || slices.Contains(c.AlertTypes, alert.Type)
}

// EscalationLevel 一级升级
type EscalationLevel struct {
	Level                  int               `yaml:"level"`
	DelayMinutes           int               `yaml:"delayMinutes"`
	Contacts               []ContactSelector `yaml:"contacts"`
	Channels               []Channel         `yaml:"channels"`
	MessageTemplate        string            `yaml:"messageTemplate"`
	RequiresAcknowledgment bool              `yaml:"requiresAcknowledgment"`
	AutoEscalate           bool              `yaml:"autoEscalate"`
}

// EscalationRule 静态配置，Levels 按 Level 升序
type EscalationRule struct {
	ID                string            `yaml:"id"`
	Name              string            `yaml:"name"`
	ApplicableTypes   []AlertType       `yaml:"applicableTypes"`
	TriggerConditions TriggerConditions `yaml:"triggerConditions"`
	Levels            []EscalationLevel `yaml:"levels"`
	Active            bool              `yaml:"active"`
}

func (r EscalationRule) Applies(alert EmergencyAlert) bool {
	return r.Active && slices.Contains(r.ApplicableTypes, alert.Type) && r.TriggerConditions.Match(alert)
}

// NextLevel 严格大于 current 的最小级别
func (r EscalationRule) NextLevel(current int) (EscalationLevel, bool) {
	for _, l := range r.Levels {
		if l.Level > current {
			return l, true
		}
	}
	return EscalationLevel{}, false
}

func (r EscalationRule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: 规则缺少 id", errs.ErrInvalidRule)
	}
	if len(r.Levels) == 0 {
		return fmt.Errorf("%w: 规则 %s 没有升级级别", errs.ErrInvalidRule, r.ID)
	}
	if len(r.TriggerConditions.Severities) == 0 && len(r.TriggerConditions.AlertTypes) == 0 {
		return fmt.Errorf("%w: 规则 %s 没有触发条件", errs.ErrInvalidRule, r.ID)
	}
	prev := 0
	for _, l := range r.Levels {
		if l.Level <= prev {
			return fmt.Errorf("%w: 规则 %s 的级别必须严格递增", errs.ErrInvalidRule, r.ID)
		}
		prev = l.Level
		if l.DelayMinutes < 0 {
			return fmt.Errorf("%w: 规则 %s 级别 %d 延迟不能为负", errs.ErrInvalidRule, r.ID, l.Level)
		}
		if len(l.Channels) == 0 {
			return fmt.Errorf("%w: 规则 %s 级别 %d 没有渠道", errs.ErrInvalidRule, r.ID, l.Level)
		}
		for _, s := range l.Contacts {
			if err := s.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ContactNotification 一个联系人在一个渠道上的投递结果
type ContactNotification struct {
	ContactID   string    `json:"contactId"`
	ContactName string    `json:"contactName"`
	Channel     Channel   `json:"channel"`
	Success     bool      `json:"success"`
	MessageID   string    `json:"messageId,omitempty"`
	Error       string    `json:"error,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

// EscalationEvent 某个级别触发的记录，只追加
type EscalationEvent struct {
	ID            uint64
	AlertID       uint64
	Level         int
	FiredAt       time.Time
	Notifications []ContactNotification
}
