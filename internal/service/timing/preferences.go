package timing

import (
	_ "embed"
	"fmt"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gopkg.in/yaml.v2"
)

//go:embed preferences.yaml
var defaultPreferences []byte

// fallbackPreference 没有配置的类型按这个处理
var fallbackPreference = domain.TimingPreference{
	RespectQuietHours: true,
	MaxDelayMinutes:   240,
}

type preferenceFile struct {
	Preferences []domain.TimingPreference `yaml:"preferences"`
}

// Registry 按通知类型查找时机偏好，创建后只读
type Registry struct {
	prefs map[domain.NotificationType]domain.TimingPreference
}

func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultPreferences)
}

func ParseRegistry(data []byte) (*Registry, error) {
	var f preferenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRule, err)
	}
	return NewRegistry(f.Preferences)
}

func NewRegistry(prefs []domain.TimingPreference) (*Registry, error) {
	m := make(map[domain.NotificationType]domain.TimingPreference, len(prefs))
	for _, p := range prefs {
		if p.Type == "" {
			return nil, fmt.Errorf("%w: 时机偏好缺少类型", errs.ErrInvalidRule)
		}
		if _, ok := m[p.Type]; ok {
			return nil, fmt.Errorf("%w: 时机偏好重复 %s", errs.ErrInvalidRule, p.Type)
		}
		if p.MinDelayMinutes < 0 || p.MaxDelayMinutes < p.MinDelayMinutes {
			return nil, fmt.Errorf("%w: %s 的延迟范围不合法", errs.ErrInvalidRule, p.Type)
		}
		m[p.Type] = p
	}
	return &Registry{prefs: m}, nil
}

func (r *Registry) Get(t domain.NotificationType) domain.TimingPreference {
	if p, ok := r.prefs[t]; ok {
		return p
	}
	p := fallbackPreference
	p.Type = t
	return p
}
