package metrics

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Hook 实现了 redis.Hook 接口，为 Redis 命令和连接添加指标
type Hook struct {
	commandCounter    *prometheus.CounterVec
	commandDuration   *prometheus.SummaryVec
	pipelineCounter   *prometheus.CounterVec
	connectionCounter *prometheus.CounterVec
}

// NewMetricsHook namespace 用于区分不同的 Redis 客户端
func NewMetricsHook(namespace string) *Hook {
	h := &Hook{
		commandCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redis_commands_total",
			Help:      "Redis 命令执行次数",
		}, []string{"command", "status"}),
		commandDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "redis_command_duration_seconds",
			Help:       "Redis 命令耗时（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"command"}),
		pipelineCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redis_pipeline_total",
			Help:      "Redis 管道执行次数",
		}, []string{"status"}),
		connectionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redis_connections_total",
			Help:      "Redis 建立连接次数",
		}, []string{"status"}),
	}
	prometheus.MustRegister(h.commandCounter, h.commandDuration, h.pipelineCounter, h.connectionCounter)
	return h
}

func (h *Hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.commandDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
		h.commandCounter.WithLabelValues(cmd.Name(), status(err)).Inc()
		return err
	}
}

func (h *Hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		st := status(err)
		for _, cmd := range cmds {
			if status(cmd.Err()) == statusError {
				st = statusError
				break
			}
		}
		h.pipelineCounter.WithLabelValues(st).Inc()
		return err
	}
}

func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		h.connectionCounter.WithLabelValues(status(err)).Inc()
		return conn, err
	}
}

// status redis.Nil 不算错误
func status(err error) string {
	if err != nil && !errors.Is(err, redis.Nil) {
		return statusError
	}
	return statusSuccess
}

// WithMetrics 为Redis客户端添加指标收集功能
func WithMetrics(client *redis.Client, namespace string) *redis.Client {
	client.AddHook(NewMetricsHook(namespace))
	return client
}
