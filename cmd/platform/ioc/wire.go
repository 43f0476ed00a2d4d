//go:build wireinject

package ioc

import (
	"gitee.com/flycash/care-notification/internal/ioc"
	"gitee.com/flycash/care-notification/internal/repository"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	"gitee.com/flycash/care-notification/internal/service/scheduler"
	"github.com/google/wire"
)

var (
	BaseSet = wire.NewSet(
		ioc.InitDB,
		ioc.InitDistributedLock,
		ioc.InitIDGenerator,
		ioc.InitRedisClient,
		ioc.InitGoCache,
		ioc.InitMQ,
		ioc.InitAuditProducer,
	)
	repositorySet = wire.NewSet(
		repository.NewNotificationRepository,
		dao.NewNotificationDAO,
		repository.NewPreferenceRepository,
		dao.NewPreferenceDAO,
		repository.NewBehaviorRepository,
		dao.NewBehaviorDAO,
		ioc.InitBehaviorCache,
		repository.NewAlertRepository,
		dao.NewAlertDAO,
		ioc.InitFireGuard,
	)
	channelSet = wire.NewSet(
		ioc.InitProviderMetrics,
		ioc.InitProviders,
		ioc.InitDispatcher,
		ioc.InitChannelSender,
	)
	engineSet = wire.NewSet(
		ioc.InitOrchestrator,
		ioc.InitBatchingEngine,
		ioc.InitTimingEngine,
		ioc.InitEscalationService,
	)
	taskSet = wire.NewSet(
		ioc.InitScheduledDeliveryTask,
		ioc.InitAuditConsumer,
		ioc.InitTasks,
		scheduler.NewExpiredNotificationJob,
		ioc.Crons,
	)
)

func InitApp() *ioc.App {
	wire.Build(
		// 基础设施
		BaseSet,
		repositorySet,

		// 渠道和供应商
		channelSet,

		// 投递、批处理、时机、紧急升级
		engineSet,

		// 后台任务
		taskSet,
		wire.Struct(new(ioc.App), "*"),
	)
	return new(ioc.App)
}
