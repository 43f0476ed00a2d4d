package ioc

import (
	"gitee.com/flycash/care-notification/internal/event/audit"
	"gitee.com/flycash/care-notification/internal/repository"
	"gitee.com/flycash/care-notification/internal/service/delivery"
	"gitee.com/flycash/care-notification/internal/service/scheduler"
	"github.com/gotomicro/ego/core/econf"
	"github.com/meoying/dlock-go"
)

func InitScheduledDeliveryTask(
	repo repository.NotificationRepository,
	prefs repository.PreferenceRepository,
	orchestrator *delivery.Orchestrator,
	dclient dlock.Client,
) *scheduler.ScheduledDeliveryTask {
	cfg := scheduler.DefaultScheduledDeliveryConfig()
	if err := econf.UnmarshalKey("scheduledDelivery", &cfg); err != nil {
		panic(err)
	}
	return scheduler.NewScheduledDeliveryTask(repo, prefs, orchestrator, dclient, cfg)
}

func InitTasks(t1 *scheduler.ScheduledDeliveryTask, t2 *audit.LogConsumer) []Task {
	return []Task{
		t1,
		t2,
	}
}
