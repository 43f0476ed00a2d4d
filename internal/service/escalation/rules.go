package escalation

import (
	_ "embed"
	"fmt"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gopkg.in/yaml.v2"
)

//go:embed rules.yaml
var defaultRules []byte

type ruleFile struct {
	Rules []domain.EscalationRule `yaml:"rules"`
}

func DefaultRules() ([]domain.EscalationRule, error) {
	return ParseRules(defaultRules)
}

// ParseRules 解析 YAML 规则表，每条规则都会校验
func ParseRules(data []byte) ([]domain.EscalationRule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRule, err)
	}
	if err := validateRules(f.Rules); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

func validateRules(rules []domain.EscalationRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: 升级规则 id 重复 %s", errs.ErrInvalidRule, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// selectRule 第一条适用的生效规则
func selectRule(rules []domain.EscalationRule, alert domain.EmergencyAlert) (domain.EscalationRule, bool) {
	for _, r := range rules {
		if r.Applies(alert) {
			return r, true
		}
	}
	return domain.EscalationRule{}, false
}
