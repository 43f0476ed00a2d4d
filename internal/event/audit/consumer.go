package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecodeclub/mq-api"
	"github.com/gotomicro/ego/core/elog"
)

// LogConsumer 把投递失败和升级事件写进审计日志
type LogConsumer struct {
	delivery   mq.Consumer
	escalation mq.Consumer
	logger     *elog.Component
}

func NewLogConsumer(q mq.MQ) (*LogConsumer, error) {
	const groupID = "audit_log"
	delivery, err := q.Consumer(DeliveryTopic, groupID)
	if err != nil {
		return nil, err
	}
	escalation, err := q.Consumer(EscalationTopic, groupID)
	if err != nil {
		return nil, err
	}
	return &LogConsumer{
		delivery:   delivery,
		escalation: escalation,
		logger:     elog.DefaultLogger.With(elog.String("component", "audit")),
	}, nil
}

func (c *LogConsumer) Start(ctx context.Context) {
	go c.loop(ctx, c.ConsumeDelivery)
	go c.loop(ctx, c.ConsumeEscalation)
}

func (c *LogConsumer) loop(ctx context.Context, consume func(ctx context.Context) error) {
	for {
		err := consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Error("消费审计事件失败", elog.FieldErr(err))
		}
	}
}

// ConsumeDelivery 消费一条投递事件
func (c *LogConsumer) ConsumeDelivery(ctx context.Context) error {
	msg, err := c.delivery.Consume(ctx)
	if err != nil {
		return err
	}
	var evt DeliveryEvent
	if err = json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("反序列化投递事件失败 %w", err)
	}
	if evt.OverallSuccess {
		c.logger.Info("通知投递成功",
			elog.Any("notificationId", evt.NotificationID),
			elog.Any("channels", len(evt.ChannelResults)))
		return nil
	}
	c.logger.Warn("通知投递失败",
		elog.Any("notificationId", evt.NotificationID),
		elog.String("reason", evt.FailureReason),
		elog.Any("channelResults", evt.ChannelResults))
	return nil
}

// ConsumeEscalation 消费一条升级事件
func (c *LogConsumer) ConsumeEscalation(ctx context.Context) error {
	msg, err := c.escalation.Consume(ctx)
	if err != nil {
		return err
	}
	var evt EscalationEvent
	if err = json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("反序列化升级事件失败 %w", err)
	}
	c.logger.Info("紧急告警状态变化",
		elog.Any("alertId", evt.AlertID),
		elog.String("status", evt.Status),
		elog.Any("level", evt.Level),
		elog.Any("notifications", len(evt.Notifications)))
	return nil
}
