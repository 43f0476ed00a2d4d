// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retry

import (
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/retry"
)

const (
	TypeFixed       = "fixed"
	TypeExponential = "exponential"
)

type Config struct {
	Type               string                    `yaml:"type"` // 重试策略
	FixedInterval      *FixedIntervalConfig      `yaml:"fixedInterval"`
	ExponentialBackoff *ExponentialBackoffConfig `yaml:"exponentialBackoff"`
}

type ExponentialBackoffConfig struct {
	// 初始重试间隔
	InitialInterval time.Duration `yaml:"initialInterval"`
	// 最大重试间隔，为 0 时不限制
	MaxInterval time.Duration `yaml:"maxInterval"`
	// 最大重试次数
	MaxRetries int32 `yaml:"maxRetries"`
}

type FixedIntervalConfig struct {
	MaxRetries int32         `yaml:"maxRetries"`
	Interval   time.Duration `yaml:"interval"`
}

// DefaultConfig 1s 起步，每次翻倍，最多重试 3 次
func DefaultConfig() Config {
	return Config{
		Type: TypeExponential,
		ExponentialBackoff: &ExponentialBackoffConfig{
			InitialInterval: time.Second,
			MaxRetries:      3,
		},
	}
}

// MaxRetries 配置允许的最大重试次数
func (c Config) MaxRetries() int32 {
	switch {
	case c.Type == TypeFixed && c.FixedInterval != nil:
		return c.FixedInterval.MaxRetries
	case c.Type == TypeExponential && c.ExponentialBackoff != nil:
		return c.ExponentialBackoff.MaxRetries
	default:
		return 0
	}
}

// NewRetry 策略是有状态的，每一轮重试都要新建一个
func NewRetry(cfg Config) (retry.Strategy, error) {
	switch cfg.Type {
	case TypeFixed:
		if cfg.FixedInterval == nil {
			return nil, fmt.Errorf("缺少 fixedInterval 配置")
		}
		return retry.NewFixedIntervalRetryStrategy(cfg.FixedInterval.Interval, cfg.FixedInterval.MaxRetries)
	case TypeExponential:
		if cfg.ExponentialBackoff == nil {
			return nil, fmt.Errorf("缺少 exponentialBackoff 配置")
		}
		eb := cfg.ExponentialBackoff
		maxInterval := eb.MaxInterval
		if maxInterval <= 0 {
			// 不封顶，让最后一次重试的间隔也能按倍数增长
			maxInterval = eb.InitialInterval << eb.MaxRetries
		}
		return retry.NewExponentialBackoffRetryStrategy(eb.InitialInterval, maxInterval, eb.MaxRetries)
	default:
		return nil, fmt.Errorf("unknown retry type: %s", cfg.Type)
	}
}
