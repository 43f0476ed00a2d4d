package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/event/audit"
	"gitee.com/flycash/care-notification/internal/pkg/delaytask"
	id "gitee.com/flycash/care-notification/internal/pkg/id_generator"
	"gitee.com/flycash/care-notification/internal/repository"
	"gitee.com/flycash/care-notification/internal/repository/cache"
	"gitee.com/flycash/care-notification/internal/service/channel"
	"github.com/ecodeclub/ekit/syncx"
	"github.com/gotomicro/ego/core/elog"
)

const defaultResolutionTemplate = "{{contactName}}，{{patientName}} 的紧急告警（{{alertType}}）已由 {{acknowledgedBy}} 确认处理。"

type Config struct {
	// DelayUnit 规则里 delayMinutes 的单位
	DelayUnit time.Duration `yaml:"delayUnit"`
	// FanOutConcurrency 同一级别并发发送的上限
	FanOutConcurrency  int    `yaml:"fanOutConcurrency"`
	ResolutionTemplate string `yaml:"resolutionTemplate"`
}

func DefaultConfig() Config {
	return Config{
		DelayUnit:          time.Minute,
		FanOutConcurrency:  8,
		ResolutionTemplate: defaultResolutionTemplate,
	}
}

type Option func(s *Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// alertState 一个开放告警的全部运行时状态，mu 保护 alert
type alertState struct {
	mu       sync.Mutex
	alert    domain.EmergencyAlert
	rule     domain.EscalationRule
	contacts []domain.EmergencyContact
}

// Service 紧急告警升级状态机
// 同一个告警的状态变化在 alertState.mu 下串行执行，不同告警互不影响
type Service struct {
	rules      []domain.EscalationRule
	cfg        Config
	dispatcher *channel.Dispatcher
	repo       repository.AlertRepository
	guard      cache.FireGuard
	producer   audit.Producer
	ids        id.Generator
	timers     *delaytask.Scheduler[uint64]
	// states 只保存本实例负责推进的开放告警，确认或全部级别触发后移除
	states syncx.Map[uint64, *alertState]
	now    func() time.Time
	logger *elog.Component
}

// NewService producer 可以为 nil
func NewService(
	rules []domain.EscalationRule,
	cfg Config,
	dispatcher *channel.Dispatcher,
	repo repository.AlertRepository,
	guard cache.FireGuard,
	producer audit.Producer,
	ids id.Generator,
	opts ...Option,
) (*Service, error) {
	if err := validateRules(rules); err != nil {
		return nil, err
	}
	if cfg.DelayUnit <= 0 {
		return nil, fmt.Errorf("%w: DelayUnit 必须为正", errs.ErrInvalidParameter)
	}
	if cfg.FanOutConcurrency <= 0 {
		cfg.FanOutConcurrency = DefaultConfig().FanOutConcurrency
	}
	if cfg.ResolutionTemplate == "" {
		cfg.ResolutionTemplate = defaultResolutionTemplate
	}
	s := &Service{
		rules:      append([]domain.EscalationRule(nil), rules...),
		cfg:        cfg,
		dispatcher: dispatcher,
		repo:       repo,
		guard:      guard,
		producer:   producer,
		ids:        ids,
		timers:     delaytask.NewScheduler[uint64](),
		now:        time.Now,
		logger:     elog.DefaultLogger.With(elog.String("component", "escalation")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Trigger 选出第一条适用的规则并立即触发第一级
// 没有适用规则时返回 errs.ErrNoEscalationRule，紧急告警不能被静默丢弃
// 第一级没有发出时不保留内存状态，调用方可以用同一个告警重试
func (s *Service) Trigger(ctx context.Context, alert domain.EmergencyAlert,
	contacts []domain.EmergencyContact,
) (domain.EmergencyAlert, error) {
	if err := alert.Validate(); err != nil {
		return domain.EmergencyAlert{}, err
	}
	rule, ok := selectRule(s.rules, alert)
	if !ok {
		return domain.EmergencyAlert{}, fmt.Errorf("%w: type=%s severity=%s",
			errs.ErrNoEscalationRule, alert.Type, alert.Severity)
	}
	if alert.ID == 0 {
		alertID, err := s.ids.NextID()
		if err != nil {
			return domain.EmergencyAlert{}, err
		}
		alert.ID = alertID
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = s.now()
	}
	alert.Status = domain.AlertStatusOpen
	alert.RuleID = rule.ID
	alert.CurrentLevel = 0
	alert.AcknowledgedAt = nil
	alert.EscalationHistory = nil

	st := &alertState{
		alert:    alert,
		rule:     rule,
		contacts: append([]domain.EmergencyContact(nil), contacts...),
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, loaded := s.states.LoadOrStore(alert.ID, st); loaded {
		return domain.EmergencyAlert{}, fmt.Errorf("%w: 告警 %d 已经触发", errs.ErrInvalidParameter, alert.ID)
	}
	if err := s.create(ctx, st); err != nil {
		s.states.Delete(alert.ID)
		return domain.EmergencyAlert{}, err
	}
	s.logger.Info("紧急告警触发",
		elog.Any("alertId", alert.ID),
		elog.String("rule", rule.ID),
		elog.String("type", string(alert.Type)))

	if err := s.fire(ctx, st, rule.Levels[0]); err != nil {
		if st.alert.CurrentLevel == 0 {
			s.states.Delete(alert.ID)
		}
		return st.alert.Clone(), err
	}
	return st.alert.Clone(), nil
}

// create 重试时存储里已经有这条告警，只要第一级还没触发就继续
func (s *Service) create(ctx context.Context, st *alertState) error {
	err := s.repo.Create(ctx, st.alert, st.contacts)
	if !errors.Is(err, errs.ErrAlertDuplicate) {
		return err
	}
	stored, err := s.repo.GetByID(ctx, st.alert.ID)
	if err != nil {
		return err
	}
	if stored.Status != domain.AlertStatusOpen || stored.CurrentLevel > 0 {
		return fmt.Errorf("%w: 告警 %d 已经触发", errs.ErrInvalidParameter, st.alert.ID)
	}
	st.alert.TriggeredAt = stored.TriggeredAt
	return nil
}

// EscalateToNextLevel 立即触发下一级，待执行的定时升级会被取消
// 告警不在本实例内存中时从存储恢复，之后的定时升级由本实例负责
func (s *Service) EscalateToNextLevel(ctx context.Context, alertID uint64) (domain.EmergencyAlert, error) {
	st, ok := s.states.Load(alertID)
	if !ok {
		restored, err := s.restore(ctx, alertID)
		if err != nil {
			return domain.EmergencyAlert{}, err
		}
		if restored.alert.Status != domain.AlertStatusOpen {
			return restored.alert.Clone(), fmt.Errorf("%w: status=%s", errs.ErrAlertClosed, restored.alert.Status)
		}
		st, _ = s.states.LoadOrStore(alertID, restored)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s.closedElsewhere(ctx, st) {
		return st.alert.Clone(), fmt.Errorf("%w: status=%s", errs.ErrAlertClosed, st.alert.Status)
	}
	if st.alert.Status != domain.AlertStatusOpen {
		return st.alert.Clone(), fmt.Errorf("%w: status=%s", errs.ErrAlertClosed, st.alert.Status)
	}
	next, ok := st.rule.NextLevel(st.alert.CurrentLevel)
	if !ok {
		return st.alert.Clone(), errs.ErrNoMoreEscalationLevels
	}
	s.timers.Cancel(alertID)
	err := s.fire(ctx, st, next)
	return st.alert.Clone(), err
}

// onTimer 定时器到期，执行前重新检查内存和存储中的状态，已确认或已触发过都直接返回
func (s *Service) onTimer(ctx context.Context, alertID uint64, level int) {
	st, ok := s.states.Load(alertID)
	if !ok {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if ctx.Err() != nil || s.closedElsewhere(ctx, st) ||
		st.alert.Status != domain.AlertStatusOpen || st.alert.CurrentLevel >= level {
		s.logger.Info("定时升级已失效",
			elog.Any("alertId", alertID),
			elog.Int("level", level),
			elog.String("status", string(st.alert.Status)))
		return
	}
	next, ok := st.rule.NextLevel(st.alert.CurrentLevel)
	if !ok || next.Level != level {
		return
	}
	// 通过检查后不再受取消影响，保证这一级完整发出
	if err := s.fire(context.WithoutCancel(ctx), st, next); err != nil {
		s.logger.Error("定时升级失败",
			elog.Any("alertId", alertID),
			elog.Int("level", level),
			elog.FieldErr(err))
	}
}

// closedElsewhere 其他实例可能已经确认了告警，调用方持有 st.mu
// 查询失败时按内存状态继续，不能因为存储故障漏发紧急通知
func (s *Service) closedElsewhere(ctx context.Context, st *alertState) bool {
	if st.alert.Status != domain.AlertStatusOpen {
		return false
	}
	stored, err := s.repo.GetByID(ctx, st.alert.ID)
	if err != nil {
		s.logger.Warn("查询告警状态失败",
			elog.Any("alertId", st.alert.ID),
			elog.FieldErr(err))
		return false
	}
	if !stored.IsAcknowledged() {
		return false
	}
	st.alert.Status = stored.Status
	st.alert.AcknowledgedAt = stored.AcknowledgedAt
	st.alert.AcknowledgedBy = stored.AcknowledgedBy
	st.alert.AcknowledgeMessage = stored.AcknowledgeMessage
	s.timers.Cancel(st.alert.ID)
	s.states.Delete(st.alert.ID)
	s.logger.Info("告警已在其他实例确认", elog.Any("alertId", st.alert.ID))
	return true
}

// restore 从存储恢复告警的运行时状态
func (s *Service) restore(ctx context.Context, alertID uint64) (*alertState, error) {
	alert, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.repo.FindContacts(ctx, alertID)
	if err != nil {
		return nil, err
	}
	rule, ok := s.ruleByID(alert.RuleID)
	if !ok {
		return nil, fmt.Errorf("%w: alert=%d rule=%s", errs.ErrNoEscalationRule, alertID, alert.RuleID)
	}
	return &alertState{alert: alert, rule: rule, contacts: contacts}, nil
}

func (s *Service) ruleByID(ruleID string) (domain.EscalationRule, bool) {
	for _, r := range s.rules {
		if r.ID == ruleID {
			return r, true
		}
	}
	return domain.EscalationRule{}, false
}

// fire 调用方持有 st.mu
// 拿到触发权之后不再有会失败的步骤，避免某一级被占住却没有发出
func (s *Service) fire(ctx context.Context, st *alertState, level domain.EscalationLevel) error {
	alert := st.alert
	if alert.Status != domain.AlertStatusOpen {
		return fmt.Errorf("%w: status=%s", errs.ErrAlertClosed, alert.Status)
	}
	if alert.FiredLevel(level.Level) || level.Level <= alert.CurrentLevel {
		return fmt.Errorf("%w: alert=%d level=%d", errs.ErrLevelAlreadyFired, alert.ID, level.Level)
	}
	evtID, err := s.ids.NextID()
	if err != nil {
		return err
	}
	ok, err := s.guard.Acquire(ctx, alert.ID, level.Level)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: alert=%d level=%d", errs.ErrLevelAlreadyFired, alert.ID, level.Level)
	}

	targets := levelTargets(domain.ResolveContacts(level.Contacts, st.contacts), level.Channels)
	if len(targets) == 0 {
		s.logger.Warn("该级别没有可以通知的联系人",
			elog.Any("alertId", alert.ID),
			elog.Int("level", level.Level))
	}
	alert.CurrentLevel = level.Level
	notices := s.fanOut(ctx, alert, targets, func(c domain.EmergencyContact) string {
		return render(level.MessageTemplate, alert, c)
	})
	evt := domain.EscalationEvent{
		ID:            evtID,
		AlertID:       alert.ID,
		Level:         level.Level,
		FiredAt:       s.now(),
		Notifications: notices,
	}

	next, hasNext := st.rule.NextLevel(level.Level)
	alert.EscalationHistory = append(alert.EscalationHistory, evt)
	if !hasNext {
		alert.Status = domain.AlertStatusExhausted
	}
	st.alert = alert
	s.logger.Info("升级级别已触发",
		elog.Any("alertId", alert.ID),
		elog.Int("level", level.Level),
		elog.Int("notifications", len(notices)),
		elog.String("status", string(alert.Status)))

	// 已经发出去的通知不回滚，落库失败只记录
	if err = s.repo.AppendEvent(ctx, alert, evt); err != nil {
		s.logger.Error("保存升级记录失败",
			elog.Any("alertId", alert.ID),
			elog.Int("level", level.Level),
			elog.FieldErr(err))
	}
	s.publish(ctx, audit.NewLevelFiredEvent(alert, evt))

	switch {
	case !hasNext:
		// 不会再升级，确认时从存储恢复
		s.states.Delete(alert.ID)
	case level.AutoEscalate:
		alertID, nextLevel := alert.ID, next.Level
		s.timers.Schedule(alertID, time.Duration(next.DelayMinutes)*s.cfg.DelayUnit, func(ctx context.Context) {
			s.onTimer(ctx, alertID, nextLevel)
		})
	}
	return nil
}

// Acknowledge 取消定时升级，标记已确认，并给之前成功通知过的联系人发送解除通知
// 重复确认直接返回当前状态，不会再发通知
// 告警不在本实例内存中时从存储恢复，确认以存储中的条件更新为准
func (s *Service) Acknowledge(ctx context.Context, alertID uint64, by, message string) (domain.EmergencyAlert, error) {
	s.timers.Cancel(alertID)
	st, ok := s.states.Load(alertID)
	if !ok {
		restored, err := s.restore(ctx, alertID)
		if err != nil {
			return domain.EmergencyAlert{}, err
		}
		st = restored
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	// 确认之后不再需要内存状态
	defer s.states.Delete(alertID)
	if st.alert.IsAcknowledged() {
		return st.alert.Clone(), nil
	}
	now := s.now()
	alert := st.alert
	alert.Status = domain.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = by
	alert.AcknowledgeMessage = message

	err := s.repo.Acknowledge(ctx, alert)
	switch {
	case errors.Is(err, errs.ErrAlertClosed):
		// 其他实例已经确认过，解除通知由那个实例发送
		if stored, gerr := s.repo.GetByID(ctx, alertID); gerr == nil {
			alert = stored
		}
		st.alert = alert
		s.logger.Info("告警已在其他实例确认", elog.Any("alertId", alertID))
		return alert.Clone(), nil
	case err != nil:
		s.logger.Error("保存告警确认失败",
			elog.Any("alertId", alertID),
			elog.FieldErr(err))
	}
	st.alert = alert

	notices := s.fanOut(ctx, alert, previouslyNotified(alert, st.contacts), func(c domain.EmergencyContact) string {
		return render(s.cfg.ResolutionTemplate, alert, c)
	})
	s.logger.Info("紧急告警已确认",
		elog.Any("alertId", alertID),
		elog.String("by", by),
		elog.Int("notices", len(notices)))
	s.publish(ctx, audit.NewAcknowledgedEvent(alert, notices))
	return alert.Clone(), nil
}

// Get 优先返回内存中的状态，没有时从存储加载
func (s *Service) Get(ctx context.Context, alertID uint64) (domain.EmergencyAlert, error) {
	if st, ok := s.states.Load(alertID); ok {
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.alert.Clone(), nil
	}
	return s.repo.GetByID(ctx, alertID)
}

// Pending 告警是否还有待执行的定时升级
func (s *Service) Pending(alertID uint64) bool {
	return s.timers.Pending(alertID)
}

// Close 停止全部定时升级
func (s *Service) Close() {
	s.timers.Close()
}

func (s *Service) publish(ctx context.Context, evt audit.EscalationEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceEscalation(ctx, evt); err != nil {
		s.logger.Warn("发送升级审计事件失败",
			elog.Any("alertId", evt.AlertID),
			elog.FieldErr(err))
	}
}
