package ioc

import (
	"context"

	"gitee.com/flycash/care-notification/internal/service/batching"
	"gitee.com/flycash/care-notification/internal/service/delivery"
	"gitee.com/flycash/care-notification/internal/service/escalation"
	"gitee.com/flycash/care-notification/internal/service/timing"
	"github.com/gotomicro/ego/task/ecron"
)

// Task 长期运行的后台任务，ctx 取消时退出
type Task interface {
	Start(ctx context.Context)
}

type App struct {
	Orchestrator *delivery.Orchestrator
	Batching     *batching.Engine
	Timing       *timing.Engine
	Escalation   *escalation.Service

	Tasks []Task
	Crons []ecron.Ecron
}

func (a *App) StartTasks(ctx context.Context) {
	for _, t := range a.Tasks {
		go func(t Task) {
			t.Start(ctx)
		}(t)
	}
}

// Close 停止升级定时器
func (a *App) Close() {
	a.Escalation.Close()
}
