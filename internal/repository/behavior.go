package repository

import (
	"context"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/cache"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/gotomicro/ego/core/elog"
)

// BehaviorRepository 用户行为数据，先查缓存再查库
//
//go:generate mockgen -source=./behavior.go -destination=./mocks/behavior.mock.go -package=repomocks
type BehaviorRepository interface {
	// Get 没有数据时返回 errs.ErrBehaviorNotFound
	Get(ctx context.Context, userID int64) (domain.UserBehavior, error)
	Save(ctx context.Context, b domain.UserBehavior) error
}

type behaviorRepository struct {
	dao    dao.BehaviorDAO
	cache  cache.BehaviorCache
	logger *elog.Component
}

func NewBehaviorRepository(d dao.BehaviorDAO, c cache.BehaviorCache) BehaviorRepository {
	return &behaviorRepository{
		dao:    d,
		cache:  c,
		logger: elog.DefaultLogger,
	}
}

func (r *behaviorRepository) Get(ctx context.Context, userID int64) (domain.UserBehavior, error) {
	b, err := r.cache.Get(ctx, userID)
	if err == nil {
		return b, nil
	}
	entity, err := r.dao.GetByUserID(ctx, userID)
	if err != nil {
		return domain.UserBehavior{}, err
	}
	b = entity.Data.Val
	b.UserID = entity.UserID
	if b.Timezone == "" {
		b.Timezone = entity.Timezone
	}
	if err = r.cache.Set(ctx, b); err != nil {
		r.logger.Warn("回写行为数据缓存失败",
			elog.Any("userId", userID),
			elog.FieldErr(err))
	}
	return b, nil
}

func (r *behaviorRepository) Save(ctx context.Context, b domain.UserBehavior) error {
	err := r.dao.Save(ctx, dao.UserBehavior{
		UserID:   b.UserID,
		Timezone: b.Timezone,
		Data:     sqlx.JsonColumn[domain.UserBehavior]{Val: b, Valid: true},
	})
	if err != nil {
		return err
	}
	// 删缓存，下次读的时候回填
	return r.cache.Del(ctx, b.UserID)
}
