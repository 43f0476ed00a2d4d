package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/pkg/retry"
	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gotomicro/ego/core/elog"
)

// DefaultRetryableErrors 错误信息包含这些片段时认为是临时性错误，不区分大小写
var DefaultRetryableErrors = []string{"network", "timeout", "rate limit", "rate-limit", "temporary", "unavailable"}

type Config struct {
	Retry           retry.Config `yaml:"retry"`
	RetryableErrors []string     `yaml:"retryableErrors"`
}

func DefaultConfig() Config {
	return Config{
		Retry:           retry.DefaultConfig(),
		RetryableErrors: DefaultRetryableErrors,
	}
}

// Sender 在单个渠道上发送，失败时按退避策略重试
type Sender struct {
	dispatcher *Dispatcher
	retryCfg   retry.Config
	retryable  []string
	now        func() time.Time
	logger     *elog.Component
}

func NewSender(dispatcher *Dispatcher, cfg Config) (*Sender, error) {
	// 提前校验一次配置
	if _, err := retry.NewRetry(cfg.Retry); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidParameter, err)
	}
	retryable := cfg.RetryableErrors
	if len(retryable) == 0 {
		retryable = DefaultRetryableErrors
	}
	return &Sender{
		dispatcher: dispatcher,
		retryCfg:   cfg.Retry,
		retryable:  slice.Map(retryable, func(_ int, src string) string { return strings.ToLower(src) }),
		now:        time.Now,
		logger:     elog.DefaultLogger.With(elog.String("component", "channel.sender")),
	}, nil
}

// Supports 渠道是否接入了供应商
func (s *Sender) Supports(ch domain.Channel) bool {
	return s.dispatcher.Supports(ch)
}

// IsRetryable 临时性错误才值得重试
func (s *Sender) IsRetryable(cause string) bool {
	lower := strings.ToLower(cause)
	for _, r := range s.retryable {
		if strings.Contains(lower, r) {
			return true
		}
	}
	return false
}

// Send 结果里的 RetryCount 是实际发生的重试次数，不含第一次发送
func (s *Sender) Send(ctx context.Context, ch domain.Channel, address string, payload provider.Payload) domain.ChannelResult {
	p, err := s.dispatcher.Provider(ch)
	if err != nil {
		// 未实现的渠道不消耗重试
		return domain.ChannelResult{Channel: ch, Error: err.Error(), DeliveredAt: s.now()}
	}
	strategy, err := retry.NewRetry(s.retryCfg)
	if err != nil {
		return domain.ChannelResult{Channel: ch, Error: err.Error(), DeliveredAt: s.now()}
	}

	retries := 0
	for {
		res, cause := s.attempt(ctx, p, address, payload)
		if cause == "" {
			return domain.ChannelResult{
				Channel:     ch,
				Success:     true,
				MessageID:   res.MessageID,
				DeliveredAt: s.now(),
				RetryCount:  retries,
			}
		}
		failed := domain.ChannelResult{
			Channel:     ch,
			Error:       cause,
			DeliveredAt: s.now(),
			RetryCount:  retries,
		}
		if !s.IsRetryable(cause) {
			return failed
		}
		interval, ok := strategy.Next()
		if !ok {
			s.logger.Warn("重试次数已用完",
				elog.String("channel", ch.String()),
				elog.Int("retries", retries),
				elog.String("cause", cause))
			return failed
		}
		select {
		case <-ctx.Done():
			failed.Error = fmt.Sprintf("%s: %s", cause, ctx.Err())
			return failed
		case <-time.After(interval):
		}
		retries++
	}
}

// attempt 把 error 和 Success=false 统一成失败原因，空字符串表示成功
func (s *Sender) attempt(ctx context.Context, p provider.Provider, address string, payload provider.Payload) (res provider.Result, cause string) {
	defer func() {
		// 供应商 panic 也当成一次失败
		if r := recover(); r != nil {
			cause = fmt.Sprintf("%v", r)
		}
	}()
	res, err := p.Send(ctx, address, payload)
	switch {
	case err != nil:
		return res, fmt.Errorf("%w: %w", errs.ErrTransportFailure, err).Error()
	case !res.Success:
		if res.Error == "" {
			return res, errs.ErrTransportFailure.Error()
		}
		return res, res.Error
	default:
		return res, ""
	}
}
