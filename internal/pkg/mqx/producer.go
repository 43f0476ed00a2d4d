package mqx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// GeneralProducer 把事件序列化成 JSON 写入固定的 topic
type GeneralProducer[T any] struct {
	producer *kafka.Producer
	topic    string
}

func NewGeneralProducer[T any](addr, topic string) (*GeneralProducer[T], error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": addr,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("创建kafka生产者失败: %w", err)
	}
	return &GeneralProducer[T]{producer: p, topic: topic}, nil
}

// Produce 同步等待投递报告
func (p *GeneralProducer[T]) Produce(ctx context.Context, evt T) error {
	val, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}
	deliveryChan := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          val,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("发送消息失败: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("未知的投递报告 %v", e)
		}
		return m.TopicPartition.Error
	}
}

func (p *GeneralProducer[T]) Close() {
	const flushTimeoutMs = 3000
	p.producer.Flush(flushTimeoutMs)
	p.producer.Close()
}
