package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gitee.com/flycash/care-notification/internal/pkg/mqx"
	"github.com/ecodeclub/mq-api"
)

// Producer 审计事件生产者，发送失败只影响审计，不影响投递
//
//go:generate mockgen -source=./producer.go -package=evtmocks -destination=../mocks/audit.mock.go
type Producer interface {
	ProduceDelivery(ctx context.Context, evt DeliveryEvent) error
	ProduceEscalation(ctx context.Context, evt EscalationEvent) error
}

// MQProducer 基于 mq-api 的实现
type MQProducer struct {
	delivery   mq.Producer
	escalation mq.Producer
}

func NewMQProducer(q mq.MQ) (*MQProducer, error) {
	delivery, err := q.Producer(DeliveryTopic)
	if err != nil {
		return nil, fmt.Errorf("创建投递事件生产者失败 %w", err)
	}
	escalation, err := q.Producer(EscalationTopic)
	if err != nil {
		return nil, fmt.Errorf("创建升级事件生产者失败 %w", err)
	}
	return &MQProducer{delivery: delivery, escalation: escalation}, nil
}

func (p *MQProducer) ProduceDelivery(ctx context.Context, evt DeliveryEvent) error {
	return produce(ctx, p.delivery, DeliveryTopic, evt)
}

func (p *MQProducer) ProduceEscalation(ctx context.Context, evt EscalationEvent) error {
	return produce(ctx, p.escalation, EscalationTopic, evt)
}

func produce(ctx context.Context, producer mq.Producer, topic string, evt any) error {
	val, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化topic的消息失败 %w", err)
	}
	_, err = producer.Produce(ctx, &mq.Message{
		Topic: topic,
		Value: val,
	})
	return err
}

// KafkaProducer 直接写 kafka
type KafkaProducer struct {
	delivery   *mqx.GeneralProducer[DeliveryEvent]
	escalation *mqx.GeneralProducer[EscalationEvent]
}

func NewKafkaProducer(addr string) (*KafkaProducer, error) {
	delivery, err := mqx.NewGeneralProducer[DeliveryEvent](addr, DeliveryTopic)
	if err != nil {
		return nil, err
	}
	escalation, err := mqx.NewGeneralProducer[EscalationEvent](addr, EscalationTopic)
	if err != nil {
		delivery.Close()
		return nil, err
	}
	return &KafkaProducer{delivery: delivery, escalation: escalation}, nil
}

func (p *KafkaProducer) ProduceDelivery(ctx context.Context, evt DeliveryEvent) error {
	return p.delivery.Produce(ctx, evt)
}

func (p *KafkaProducer) ProduceEscalation(ctx context.Context, evt EscalationEvent) error {
	return p.escalation.Produce(ctx, evt)
}

func (p *KafkaProducer) Close() {
	p.delivery.Close()
	p.escalation.Close()
}
