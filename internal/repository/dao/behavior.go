package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=./behavior.go -destination=./mocks/behavior.mock.go -package=daomocks
type BehaviorDAO interface {
	GetByUserID(ctx context.Context, userID int64) (UserBehavior, error)
	Save(ctx context.Context, b UserBehavior) error
}

// UserBehavior 用户行为统计，由离线任务定期写入
type UserBehavior struct {
	UserID   int64                                `gorm:"primaryKey;autoIncrement:false;comment:'用户ID'"`
	Timezone string                               `gorm:"type:VARCHAR(64);comment:'IANA 时区'"`
	Data     sqlx.JsonColumn[domain.UserBehavior] `gorm:"type:JSON;comment:'活跃度、响应率、偏好时段'"`
	Ctime    int64
	Utime    int64
}

type behaviorDAO struct {
	db *egorm.Component
}

func NewBehaviorDAO(db *egorm.Component) BehaviorDAO {
	return &behaviorDAO{db: db}
}

func (d *behaviorDAO) GetByUserID(ctx context.Context, userID int64) (UserBehavior, error) {
	var b UserBehavior
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserBehavior{}, fmt.Errorf("%w: userId = %d", errs.ErrBehaviorNotFound, userID)
	}
	return b, err
}

func (d *behaviorDAO) Save(ctx context.Context, b UserBehavior) error {
	now := time.Now().UnixMilli()
	b.Ctime, b.Utime = now, now
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timezone", "data", "utime"}),
	}).Create(&b).Error
}
