package ioc

import (
	"context"

	"gitee.com/flycash/care-notification/internal/event/audit"
	"github.com/ecodeclub/mq-api"
	"github.com/ecodeclub/mq-api/memory"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
)

// InitMQ 进程内的消息队列，没有配置 kafka 时审计事件走这里
func InitMQ() mq.MQ {
	const partitions = 1
	q := memory.NewMQ()
	for _, topic := range []string{audit.DeliveryTopic, audit.EscalationTopic} {
		if err := q.CreateTopic(context.Background(), topic, partitions); err != nil {
			panic(err)
		}
	}
	return q
}

// InitAuditProducer 配置了 audit.kafka.addr 时直接写 kafka
func InitAuditProducer(q mq.MQ) audit.Producer {
	addr := econf.GetString("audit.kafka.addr")
	if addr != "" {
		p, err := audit.NewKafkaProducer(addr)
		if err != nil {
			panic(err)
		}
		elog.DefaultLogger.Info("审计事件写入 kafka", elog.String("addr", addr))
		return p
	}
	p, err := audit.NewMQProducer(q)
	if err != nil {
		panic(err)
	}
	return p
}

func InitAuditConsumer(q mq.MQ) *audit.LogConsumer {
	c, err := audit.NewLogConsumer(q)
	if err != nil {
		panic(err)
	}
	return c
}
