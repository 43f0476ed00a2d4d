package local

import (
	"context"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/cache"
	ca "github.com/patrickmn/go-cache"
)

type BehaviorCache struct {
	c *ca.Cache
}

func NewBehaviorCache(c *ca.Cache) *BehaviorCache {
	return &BehaviorCache{c: c}
}

func (l *BehaviorCache) Get(_ context.Context, userID int64) (domain.UserBehavior, error) {
	v, ok := l.c.Get(cache.BehaviorKey(userID))
	if !ok {
		return domain.UserBehavior{}, cache.ErrKeyNotFound
	}
	return v.(domain.UserBehavior), nil
}

func (l *BehaviorCache) Set(_ context.Context, b domain.UserBehavior) error {
	l.c.Set(cache.BehaviorKey(b.UserID), b, ca.DefaultExpiration)
	return nil
}

func (l *BehaviorCache) Del(_ context.Context, userID int64) error {
	l.c.Delete(cache.BehaviorKey(userID))
	return nil
}
