package console

import (
	"context"
	"strconv"
	"sync/atomic"

	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/gotomicro/ego/core/elog"
)

// Provider 把推送输出到日志，本地开发和没有接入推送网关的时候用
type Provider struct {
	logger *elog.Component
	prefix string
	seq    atomic.Uint64
}

func NewProvider(prefix string) *Provider {
	return &Provider{
		logger: elog.DefaultLogger.With(elog.String("provider", "console")),
		prefix: prefix,
	}
}

func (p *Provider) Send(_ context.Context, address string, payload provider.Payload) (provider.Result, error) {
	id := p.nextID()
	p.logger.Info("发送推送",
		elog.String("address", address),
		elog.String("title", payload.Title),
		elog.String("tag", payload.Tag),
		elog.String("messageId", id))
	return provider.Result{Success: true, MessageID: id}, nil
}

func (p *Provider) SendBatch(ctx context.Context, addresses []string, payload provider.Payload) ([]provider.Result, error) {
	res := make([]provider.Result, 0, len(addresses))
	for _, addr := range addresses {
		r, _ := p.Send(ctx, addr, payload)
		res = append(res, r)
	}
	return res, nil
}

func (p *Provider) nextID() string {
	return p.prefix + "-" + strconv.FormatUint(p.seq.Add(1), 10)
}
