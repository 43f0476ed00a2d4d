package delivery

import (
	"context"
	"strconv"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/event/audit"
	"gitee.com/flycash/care-notification/internal/repository"
	"gitee.com/flycash/care-notification/internal/service/channel"
	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/gotomicro/ego/core/elog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sanitizer 在发送前改写标题和正文，比如去掉敏感的健康信息
type Sanitizer interface {
	Sanitize(ctx context.Context, title, body string) (string, string)
}

// SanitizerFunc 函数适配成 Sanitizer
type SanitizerFunc func(ctx context.Context, title, body string) (string, string)

func (f SanitizerFunc) Sanitize(ctx context.Context, title, body string) (string, string) {
	return f(ctx, title, body)
}

type Option func(o *Orchestrator)

func WithSanitizer(s Sanitizer) Option {
	return func(o *Orchestrator) {
		o.sanitizer = s
	}
}

// WithClock 测试里固定当前时间
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator 单条通知的投递编排：免打扰、渠道顺序、重试、结果汇总和落库
type Orchestrator struct {
	sender    *channel.Sender
	repo      repository.NotificationRepository
	producer  audit.Producer
	sanitizer Sanitizer
	now       func() time.Time
	tracer    trace.Tracer
	logger    *elog.Component
}

// NewOrchestrator producer 可以为 nil，此时不发审计事件
func NewOrchestrator(
	sender *channel.Sender,
	repo repository.NotificationRepository,
	producer audit.Producer,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		sender:   sender,
		repo:     repo,
		producer: producer,
		now:      time.Now,
		tracer:   otel.Tracer("care-notification/delivery"),
		logger:   elog.DefaultLogger.With(elog.String("component", "delivery")),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Deliver 所有失败都体现在结果里，不返回 error
func (o *Orchestrator) Deliver(ctx context.Context, req domain.NotificationRequest, prefs domain.UserPreferences) domain.DeliveryResult {
	ctx, span := o.tracer.Start(ctx, "Orchestrator.Deliver",
		trace.WithAttributes(
			attribute.Int64("notification.id", int64(req.ID)),
			attribute.String("notification.type", string(req.Type)),
			attribute.String("notification.priority", string(req.Priority)),
		))
	defer span.End()

	res := o.deliver(ctx, req, prefs)
	span.SetAttributes(attribute.Bool("notification.success", res.OverallSuccess))
	if !res.OverallSuccess {
		span.SetStatus(codes.Error, res.FailureReason)
	}
	return res
}

func (o *Orchestrator) deliver(ctx context.Context, req domain.NotificationRequest, prefs domain.UserPreferences) domain.DeliveryResult {
	if err := req.Validate(); err != nil {
		o.logger.Warn("通知请求不合法",
			elog.Any("notificationId", req.ID),
			elog.FieldErr(err))
		res := domain.DeliveryResult{
			NotificationID: req.ID,
			DeliveredAt:    o.now(),
			FailureReason:  domain.FailureReasonInvalidRequest,
		}
		if req.ID != 0 {
			o.persist(ctx, req, res)
		}
		return res
	}

	if !req.BypassesPolicy() {
		if at, ok := o.quietHoursEnd(prefs); ok {
			return o.deferTo(ctx, req, at)
		}
	}

	payload := o.payload(ctx, req)
	// 已经开始发送的通知要把渠道列表走完，不受调用方取消影响
	results := o.sendChannels(context.WithoutCancel(ctx), req, prefs, payload)

	res := domain.DeliveryResult{
		NotificationID: req.ID,
		ChannelResults: results,
		DeliveredAt:    o.now(),
	}
	for _, r := range results {
		if r.Success {
			res.OverallSuccess = true
			break
		}
	}
	if !res.OverallSuccess {
		res.FailureReason = domain.FailureReasonAllFailed
		if len(results) == 0 {
			res.FailureReason = domain.FailureReasonNoChannel
		}
	}
	o.persist(ctx, req, res)
	o.publish(ctx, req, res)
	return res
}

// quietHoursEnd 当前处于免打扰时段时返回结束时间
func (o *Orchestrator) quietHoursEnd(prefs domain.UserPreferences) (time.Time, bool) {
	if !prefs.QuietHours.IsConfigured() {
		return time.Time{}, false
	}
	loc, err := prefs.Location()
	if err != nil {
		o.logger.Warn("用户时区不合法，按 UTC 处理",
			elog.Any("userId", prefs.UserID),
			elog.String("timezone", prefs.Timezone))
		loc = time.UTC
	}
	local := o.now().In(loc)
	if !prefs.QuietHours.Contains(local) {
		return time.Time{}, false
	}
	return prefs.QuietHours.NextEnd(local), true
}

func (o *Orchestrator) deferTo(ctx context.Context, req domain.NotificationRequest, at time.Time) domain.DeliveryResult {
	if err := o.repo.UpdateScheduling(ctx, req.ID, at); err != nil {
		o.logger.Warn("保存延后时间失败",
			elog.Any("notificationId", req.ID),
			elog.FieldErr(err))
	}
	o.logger.Info("免打扰时段，延后投递",
		elog.Any("notificationId", req.ID),
		elog.Any("scheduledFor", at))
	return domain.DeliveryResult{
		NotificationID: req.ID,
		DeliveredAt:    o.now(),
		FailureReason:  domain.FailureReasonDeferred,
		ScheduledFor:   at,
	}
}

// sendChannels 严格按顺序逐个渠道发送
// HIGH 和 URGENT 尝试全部渠道，其余优先级第一个成功就停
func (o *Orchestrator) sendChannels(ctx context.Context, req domain.NotificationRequest,
	prefs domain.UserPreferences, payload provider.Payload,
) []domain.ChannelResult {
	order := channel.Order(req, prefs)
	results := make([]domain.ChannelResult, 0, len(order))
	for _, ch := range order {
		address, ok := o.address(ch, req, prefs)
		if !ok {
			continue
		}
		res := o.sender.Send(ctx, ch, address, payload)
		results = append(results, res)
		if res.Success && !req.Priority.IsHighOrAbove() {
			break
		}
	}
	return results
}

// address 渠道对用户关闭时返回 false
// 站内信的地址就是用户ID，只需要用户开启
func (o *Orchestrator) address(ch domain.Channel, req domain.NotificationRequest, prefs domain.UserPreferences) (string, bool) {
	if ch == domain.ChannelInApp {
		if !prefs.ExplicitlyEnabled(ch) {
			return "", false
		}
		if addr := prefs.Address(ch); addr != "" {
			return addr, true
		}
		return strconv.FormatInt(req.UserID, 10), true
	}
	if !prefs.ChannelEnabled(ch) {
		return "", false
	}
	return prefs.Address(ch), true
}

func (o *Orchestrator) payload(ctx context.Context, req domain.NotificationRequest) provider.Payload {
	title, body := req.Title, req.Message
	if o.sanitizer != nil {
		title, body = o.sanitizer.Sanitize(ctx, title, body)
	}
	data := make(map[string]string, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		data[k] = v
	}
	data["notificationId"] = strconv.FormatUint(req.ID, 10)
	data["priority"] = string(req.Priority)
	return provider.Payload{
		Title: title,
		Body:  body,
		Tag:   string(req.Type),
		Data:  data,
	}
}

// persist 落库失败不影响已经发生的投递，只记录日志
func (o *Orchestrator) persist(ctx context.Context, req domain.NotificationRequest, res domain.DeliveryResult) {
	var err error
	if res.OverallSuccess {
		err = o.repo.MarkAsDelivered(ctx, req.ID, res.ChannelResults)
	} else {
		err = o.repo.MarkAsFailed(ctx, req.ID, res.FailureReason, res.ChannelResults)
	}
	if err != nil {
		o.logger.Warn("保存投递结果失败",
			elog.Any("notificationId", req.ID),
			elog.Any("success", res.OverallSuccess),
			elog.FieldErr(err))
	}
}

func (o *Orchestrator) publish(ctx context.Context, req domain.NotificationRequest, res domain.DeliveryResult) {
	if o.producer == nil {
		return
	}
	if err := o.producer.ProduceDelivery(ctx, audit.NewDeliveryEvent(req, res)); err != nil {
		o.logger.Warn("发送投递审计事件失败",
			elog.Any("notificationId", req.ID),
			elog.FieldErr(err))
	}
}
