package tracing

import (
	"context"

	"gitee.com/flycash/care-notification/internal/service/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Provider 为供应商实现添加链路追踪的装饰器
type Provider struct {
	provider provider.Provider
	tracer   trace.Tracer
	channel  string
}

// NewProvider 创建一个新的带有链路追踪的供应商
func NewProvider(channel string, p provider.Provider) *Provider {
	return &Provider{
		provider: p,
		tracer:   otel.Tracer("care-notification/provider"),
		channel:  channel,
	}
}

func (p *Provider) Send(ctx context.Context, address string, payload provider.Payload) (provider.Result, error) {
	// 地址属于敏感信息，不进 span
	ctx, span := p.tracer.Start(ctx, "Provider.Send",
		trace.WithAttributes(
			attribute.String("notification.channel", p.channel),
			attribute.String("notification.tag", payload.Tag),
		))
	defer span.End()

	res, err := p.provider.Send(ctx, address, payload)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !res.Success:
		span.SetStatus(codes.Error, res.Error)
	default:
		span.SetAttributes(attribute.String("notification.messageId", res.MessageID))
	}
	return res, err
}
