package redis

import (
	"context"
	"encoding/json"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type BehaviorCache struct {
	rdb redis.Cmdable
}

func NewBehaviorCache(rdb redis.Cmdable) *BehaviorCache {
	return &BehaviorCache{rdb: rdb}
}

func (c *BehaviorCache) Get(ctx context.Context, userID int64) (domain.UserBehavior, error) {
	val, err := c.rdb.Get(ctx, cache.BehaviorKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.UserBehavior{}, cache.ErrKeyNotFound
		}
		return domain.UserBehavior{}, errors.Wrap(err, "从redis获取行为数据失败")
	}
	var b domain.UserBehavior
	if err = json.Unmarshal(val, &b); err != nil {
		return domain.UserBehavior{}, errors.Wrap(err, "反序列化行为数据失败")
	}
	return b, nil
}

func (c *BehaviorCache) Set(ctx context.Context, b domain.UserBehavior) error {
	data, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "序列化行为数据失败")
	}
	return c.rdb.Set(ctx, cache.BehaviorKey(b.UserID), data, cache.DefaultExpiredTime).Err()
}

func (c *BehaviorCache) Del(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, cache.BehaviorKey(userID)).Err()
}
