package metrics

import (
	"context"
	"time"

	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
	statusError   = "error"
)

// Collector 同一个进程里所有供应商共用一组指标
type Collector struct {
	sendDurationSummary *prometheus.SummaryVec
	sendStatusCounter   *prometheus.CounterVec
}

// NewCollector reg 为 nil 时注册到默认的 Registerer
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		sendDurationSummary: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "provider_send_duration_seconds",
				Help:       "供应商发送通知耗时统计（秒）",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
				MaxAge:     time.Minute * 5,
			},
			[]string{"provider", "channel", "status"},
		),
		sendStatusCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_send_status_total",
				Help: "供应商发送通知状态统计",
			},
			[]string{"provider", "channel", "status"},
		),
	}
	reg.MustRegister(c.sendDurationSummary, c.sendStatusCounter)
	return c
}

// Wrap 为供应商实现添加指标收集
func (c *Collector) Wrap(name, channel string, p provider.Provider) *Provider {
	return &Provider{provider: p, collector: c, name: name, channel: channel}
}

// Provider 为供应商实现添加指标收集的装饰器
type Provider struct {
	provider  provider.Provider
	collector *Collector
	name      string
	channel   string
}

func (p *Provider) Send(ctx context.Context, address string, payload provider.Payload) (provider.Result, error) {
	start := time.Now()
	res, err := p.provider.Send(ctx, address, payload)
	p.observe(start, status(res, err))
	return res, err
}

// SendBatch 底层不支持批量时逐个发送
func (p *Provider) SendBatch(ctx context.Context, addresses []string, payload provider.Payload) ([]provider.Result, error) {
	bp, ok := p.provider.(provider.BatchProvider)
	if !ok {
		res := make([]provider.Result, 0, len(addresses))
		for _, addr := range addresses {
			r, err := p.Send(ctx, addr, payload)
			if err != nil {
				r = provider.Result{Error: err.Error()}
			}
			res = append(res, r)
		}
		return res, nil
	}
	start := time.Now()
	res, err := bp.SendBatch(ctx, addresses, payload)
	st := statusSuccess
	if err != nil {
		st = statusError
	}
	p.observe(start, st)
	return res, err
}

func (p *Provider) observe(start time.Time, st string) {
	p.collector.sendStatusCounter.WithLabelValues(p.name, p.channel, st).Inc()
	p.collector.sendDurationSummary.WithLabelValues(p.name, p.channel, st).Observe(time.Since(start).Seconds())
}

func status(res provider.Result, err error) string {
	switch {
	case err != nil:
		return statusError
	case !res.Success:
		return statusFailed
	default:
		return statusSuccess
	}
}
