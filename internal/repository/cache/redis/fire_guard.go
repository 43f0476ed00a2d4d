package redis

import (
	"context"

	"gitee.com/flycash/care-notification/internal/repository/cache"
	"github.com/redis/go-redis/v9"
)

// FireGuard 多实例部署时用 SETNX 抢触发权
type FireGuard struct {
	rdb redis.Cmdable
}

func NewFireGuard(rdb redis.Cmdable) *FireGuard {
	return &FireGuard{rdb: rdb}
}

func (g *FireGuard) Acquire(ctx context.Context, alertID uint64, level int) (bool, error) {
	return g.rdb.SetNX(ctx, cache.FireKey(alertID, level), 1, cache.FireGuardTTL).Result()
}
