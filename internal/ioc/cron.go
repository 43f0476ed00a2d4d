package ioc

import (
	"gitee.com/flycash/care-notification/internal/service/scheduler"
	"github.com/gotomicro/ego/task/ecron"
)

func Crons(j *scheduler.ExpiredNotificationJob) []ecron.Ecron {
	c1 := ecron.Load("cron.expiredNotification").Build(ecron.WithJob(j.Do))
	return []ecron.Ecron{c1}
}
