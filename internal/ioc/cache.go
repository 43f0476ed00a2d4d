package ioc

import (
	"time"

	"gitee.com/flycash/care-notification/internal/repository/cache"
	"gitee.com/flycash/care-notification/internal/repository/cache/local"
	rediscache "gitee.com/flycash/care-notification/internal/repository/cache/redis"
	"github.com/gotomicro/ego/core/econf"
	ca "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

func InitGoCache() *ca.Cache {
	const (
		defaultExpiration = 10 * time.Minute
		cleanupInterval   = 20 * time.Minute
	)
	return ca.New(defaultExpiration, cleanupInterval)
}

// InitBehaviorCache 行为数据变化很慢，本地缓存即可
func InitBehaviorCache(c *ca.Cache) cache.BehaviorCache {
	return local.NewBehaviorCache(c)
}

// InitFireGuard 多实例部署时必须用 redis
func InitFireGuard(c *ca.Cache, rdb *redis.Client) cache.FireGuard {
	mode := econf.GetString("escalation.fireGuard")
	if mode == "local" {
		return local.NewFireGuard(c)
	}
	return rediscache.NewFireGuard(rdb)
}
