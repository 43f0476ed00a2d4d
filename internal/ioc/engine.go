package ioc

import (
	"os"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/event/audit"
	id "gitee.com/flycash/care-notification/internal/pkg/id_generator"
	"gitee.com/flycash/care-notification/internal/repository"
	"gitee.com/flycash/care-notification/internal/repository/cache"
	"gitee.com/flycash/care-notification/internal/service/batching"
	"gitee.com/flycash/care-notification/internal/service/channel"
	"gitee.com/flycash/care-notification/internal/service/delivery"
	"gitee.com/flycash/care-notification/internal/service/escalation"
	"gitee.com/flycash/care-notification/internal/service/timing"
	"github.com/gotomicro/ego/core/econf"
)

func InitOrchestrator(sender *channel.Sender, repo repository.NotificationRepository,
	producer audit.Producer,
) *delivery.Orchestrator {
	return delivery.NewOrchestrator(sender, repo, producer)
}

// InitBatchingEngine batching.rulesFile 不为空时用文件里的规则替换内置规则
func InitBatchingEngine(ids id.Generator) *batching.Engine {
	cfg := batching.DefaultConfig()
	if err := econf.UnmarshalKey("batching", &cfg); err != nil {
		panic(err)
	}
	var (
		rules []domain.BatchingRule
		err   error
	)
	if file := econf.GetString("batching.rulesFile"); file != "" {
		rules, err = batching.ParseRules(mustReadFile(file))
	} else {
		rules, err = batching.DefaultRules()
	}
	if err != nil {
		panic(err)
	}
	e, err := batching.NewEngine(rules, cfg, ids)
	if err != nil {
		panic(err)
	}
	return e
}

func InitTimingEngine(repo repository.BehaviorRepository) *timing.Engine {
	cfg := timing.DefaultConfig()
	if err := econf.UnmarshalKey("timing", &cfg); err != nil {
		panic(err)
	}
	var (
		registry *timing.Registry
		err      error
	)
	if file := econf.GetString("timing.preferencesFile"); file != "" {
		registry, err = timing.ParseRegistry(mustReadFile(file))
	} else {
		registry, err = timing.DefaultRegistry()
	}
	if err != nil {
		panic(err)
	}
	e, err := timing.NewEngine(registry, cfg, repo)
	if err != nil {
		panic(err)
	}
	return e
}

func InitEscalationService(
	dispatcher *channel.Dispatcher,
	repo repository.AlertRepository,
	guard cache.FireGuard,
	producer audit.Producer,
	ids id.Generator,
) *escalation.Service {
	cfg := escalation.DefaultConfig()
	if err := econf.UnmarshalKey("escalation", &cfg); err != nil {
		panic(err)
	}
	var (
		rules []domain.EscalationRule
		err   error
	)
	if file := econf.GetString("escalation.rulesFile"); file != "" {
		rules, err = escalation.ParseRules(mustReadFile(file))
	} else {
		rules, err = escalation.DefaultRules()
	}
	if err != nil {
		panic(err)
	}
	svc, err := escalation.NewService(rules, cfg, dispatcher, repo, guard, producer, ids)
	if err != nil {
		panic(err)
	}
	return svc
}

func mustReadFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return data
}
