package main

import (
	"context"

	"gitee.com/flycash/care-notification/cmd/platform/ioc"
	prodioc "gitee.com/flycash/care-notification/internal/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egovernor"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 先加载配置
	egoApp := ego.New()

	tp := prodioc.InitZipkinTracer()
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			elog.Error("Shutdown zipkinTracer", elog.FieldErr(err))
		}
	}()

	app := ioc.InitApp()
	defer app.Close()
	app.StartTasks(ctx)

	// governor 暴露 /metrics 和健康检查
	if err := egoApp.
		Serve(egovernor.Load("server.governor").Build()).
		Cron(app.Crons...).
		Run(); err != nil {
		elog.Panic("startup", elog.FieldErr(err))
	}
}
