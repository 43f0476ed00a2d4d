package batching

import (
	_ "embed"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gopkg.in/yaml.v2"
)

//go:embed rules.yaml
var defaultRules []byte

const metadataFieldPrefix = "metadata."

type ruleFile struct {
	Rules []domain.BatchingRule `yaml:"rules"`
}

// DefaultRules 内置的批处理规则
func DefaultRules() ([]domain.BatchingRule, error) {
	return ParseRules(defaultRules)
}

// ParseRules 解析并校验 YAML 格式的规则表
func ParseRules(data []byte) ([]domain.BatchingRule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidRule, err)
	}
	if err := validateRules(f.Rules); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

func validateRules(rules []domain.BatchingRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("%w: 批处理规则缺少 id", errs.ErrInvalidRule)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: 批处理规则 id 重复 %s", errs.ErrInvalidRule, r.ID)
		}
		seen[r.ID] = struct{}{}
		if len(r.NotificationTypes) == 0 {
			return fmt.Errorf("%w: 规则 %s 没有通知类型", errs.ErrInvalidRule, r.ID)
		}
		if r.MinBatchSize < 1 || (r.MaxBatchSize > 0 && r.MaxBatchSize < r.MinBatchSize) {
			return fmt.Errorf("%w: 规则 %s 批次大小不合法", errs.ErrInvalidRule, r.ID)
		}
		if r.BatchWindowMinutes < 0 {
			return fmt.Errorf("%w: 规则 %s 时间窗口不能为负", errs.ErrInvalidRule, r.ID)
		}
		for _, c := range r.Conditions {
			if err := validateCondition(c); err != nil {
				return fmt.Errorf("规则 %s: %w", r.ID, err)
			}
		}
	}
	return nil
}

func validateCondition(c domain.RuleCondition) error {
	switch c.Field {
	case "priority", "type", "userId":
	default:
		if !strings.HasPrefix(c.Field, metadataFieldPrefix) || len(c.Field) == len(metadataFieldPrefix) {
			return fmt.Errorf("%w: 未知的条件字段 %q", errs.ErrInvalidRule, c.Field)
		}
	}
	switch c.Operator {
	case domain.OperatorExists:
	case domain.OperatorEquals, domain.OperatorNotEquals, domain.OperatorIn, domain.OperatorNotIn:
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: 条件 %s 缺少取值", errs.ErrInvalidRule, c.Field)
		}
	default:
		return fmt.Errorf("%w: 未知的运算符 %q", errs.ErrInvalidRule, c.Operator)
	}
	return nil
}

// fieldValue ok 为 false 表示字段不存在
func fieldValue(field string, n domain.Notification, userID int64) (string, bool) {
	switch field {
	case "priority":
		return string(n.Priority), n.Priority != ""
	case "type":
		return string(n.Type), n.Type != ""
	case "userId":
		return strconv.FormatInt(userID, 10), true
	default:
		v, ok := n.Metadata[strings.TrimPrefix(field, metadataFieldPrefix)]
		return v, ok
	}
}

func matchCondition(c domain.RuleCondition, n domain.Notification, userID int64) bool {
	v, ok := fieldValue(c.Field, n, userID)
	switch c.Operator {
	case domain.OperatorExists:
		return ok
	case domain.OperatorEquals:
		return ok && v == c.Values[0]
	case domain.OperatorNotEquals:
		return !ok || v != c.Values[0]
	case domain.OperatorIn:
		return ok && slices.Contains(c.Values, v)
	case domain.OperatorNotIn:
		return !ok || !slices.Contains(c.Values, v)
	default:
		return false
	}
}

// matchRule 条件只针对第一条通知求值
func matchRule(r domain.BatchingRule, first domain.Notification, userID int64) bool {
	if !r.Active || !r.AppliesTo(first.Type) {
		return false
	}
	for _, c := range r.Conditions {
		if !matchCondition(c, first, userID) {
			return false
		}
	}
	return true
}
