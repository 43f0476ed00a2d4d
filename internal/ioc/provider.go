package ioc

import (
	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/service/channel"
	"gitee.com/flycash/care-notification/internal/service/provider"
	"gitee.com/flycash/care-notification/internal/service/provider/console"
	"gitee.com/flycash/care-notification/internal/service/provider/email"
	"gitee.com/flycash/care-notification/internal/service/provider/metrics"
	"gitee.com/flycash/care-notification/internal/service/provider/tracing"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
	"github.com/prometheus/client_golang/prometheus"
)

func InitProviderMetrics() *metrics.Collector {
	return metrics.NewCollector(prometheus.DefaultRegisterer)
}

// InitProviders 短信不在这里注册，没有供应商的渠道一律视为未实现
func InitProviders(collector *metrics.Collector) map[domain.Channel]provider.Provider {
	type Config struct {
		Email email.Config `yaml:"email"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("provider", &cfg); err != nil {
		panic(err)
	}

	raw := map[domain.Channel]provider.Provider{
		domain.ChannelPush:  console.NewProvider("push"),
		domain.ChannelInApp: console.NewProvider("in-app"),
	}
	if cfg.Email.ServerToken != "" {
		p, err := email.NewProvider(cfg.Email)
		if err != nil {
			panic(err)
		}
		raw[domain.ChannelEmail] = p
	} else {
		elog.DefaultLogger.Warn("没有配置 postmark，邮件渠道不可用")
	}

	res := make(map[domain.Channel]provider.Provider, len(raw))
	for ch, p := range raw {
		name := ch.String()
		res[ch] = tracing.NewProvider(name, collector.Wrap(name, name, p))
	}
	return res
}

func InitDispatcher(providers map[domain.Channel]provider.Provider) *channel.Dispatcher {
	return channel.NewDispatcher(providers)
}

func InitChannelSender(dispatcher *channel.Dispatcher) *channel.Sender {
	cfg := channel.DefaultConfig()
	if err := econf.UnmarshalKey("channel", &cfg); err != nil {
		panic(err)
	}
	s, err := channel.NewSender(dispatcher, cfg)
	if err != nil {
		panic(err)
	}
	return s
}
