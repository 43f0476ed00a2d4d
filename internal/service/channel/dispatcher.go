package channel

import (
	"fmt"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/service/provider"
)

// Dispatcher 渠道到供应商的映射，启动后只读
type Dispatcher struct {
	providers map[domain.Channel]provider.Provider
}

// NewDispatcher 没有注册供应商的渠道视为未实现
func NewDispatcher(providers map[domain.Channel]provider.Provider) *Dispatcher {
	ps := make(map[domain.Channel]provider.Provider, len(providers))
	for ch, p := range providers {
		// 短信渠道暂未接入
		if ch == domain.ChannelSMS || p == nil {
			continue
		}
		ps[ch] = p
	}
	return &Dispatcher{providers: ps}
}

func (d *Dispatcher) Provider(ch domain.Channel) (provider.Provider, error) {
	p, ok := d.providers[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrChannelNotImplemented, ch)
	}
	return p, nil
}

// Supports 渠道是否有可用的供应商
func (d *Dispatcher) Supports(ch domain.Channel) bool {
	_, ok := d.providers[ch]
	return ok
}
