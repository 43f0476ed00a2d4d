package local

import (
	"context"

	"gitee.com/flycash/care-notification/internal/repository/cache"
	ca "github.com/patrickmn/go-cache"
)

// FireGuard 单实例部署时使用
type FireGuard struct {
	c *ca.Cache
}

func NewFireGuard(c *ca.Cache) *FireGuard {
	return &FireGuard{c: c}
}

func (g *FireGuard) Acquire(_ context.Context, alertID uint64, level int) (bool, error) {
	// Add 在 key 已存在时返回错误
	err := g.c.Add(cache.FireKey(alertID, level), struct{}{}, cache.FireGuardTTL)
	return err == nil, nil
}
