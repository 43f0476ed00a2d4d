package cache

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"github.com/pkg/errors"
)

var ErrKeyNotFound = errors.New("key not found")

const (
	BehaviorPrefix = "behavior"
	FirePrefix     = "escalation_fired"

	DefaultExpiredTime = 10 * time.Minute
	// FireGuardTTL 告警的生命周期远小于这个时间
	FireGuardTTL = 72 * time.Hour
)

// BehaviorCache 用户行为数据缓存，行为数据由离线任务更新，允许短时间不一致
type BehaviorCache interface {
	Get(ctx context.Context, userID int64) (domain.UserBehavior, error)
	Set(ctx context.Context, b domain.UserBehavior) error
	Del(ctx context.Context, userID int64) error
}

// FireGuard 同一个告警的同一个级别只允许触发一次，多实例部署时也一样
type FireGuard interface {
	// Acquire 返回 true 表示拿到了触发权
	Acquire(ctx context.Context, alertID uint64, level int) (bool, error)
}

func BehaviorKey(userID int64) string {
	return fmt.Sprintf("%s:%d", BehaviorPrefix, userID)
}

func FireKey(alertID uint64, level int) string {
	return fmt.Sprintf("%s:%d:%d", FirePrefix, alertID, level)
}
