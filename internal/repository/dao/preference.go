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

//go:generate mockgen -source=./preference.go -destination=./mocks/preference.mock.go -package=daomocks
type PreferenceDAO interface {
	GetByUserID(ctx context.Context, userID int64) (UserPreference, error)
	Save(ctx context.Context, pref UserPreference) error
}

// UserPreference 用户通知偏好表
type UserPreference struct {
	UserID          int64                                                        `gorm:"primaryKey;autoIncrement:false;comment:'用户ID'"`
	Channels        sqlx.JsonColumn[map[domain.Channel]domain.ChannelPreference] `gorm:"type:JSON;comment:'各渠道开关和地址'"`
	QuietHoursStart string                                                       `gorm:"type:VARCHAR(5);comment:'免打扰开始 HH:MM'"`
	QuietHoursEnd   string                                                       `gorm:"type:VARCHAR(5);comment:'免打扰结束 HH:MM'"`
	Timezone        string                                                       `gorm:"type:VARCHAR(64);comment:'IANA 时区'"`
	Ctime           int64
	Utime           int64
}

type preferenceDAO struct {
	db *egorm.Component
}

func NewPreferenceDAO(db *egorm.Component) PreferenceDAO {
	return &preferenceDAO{db: db}
}

func (d *preferenceDAO) GetByUserID(ctx context.Context, userID int64) (UserPreference, error) {
	var pref UserPreference
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserPreference{}, fmt.Errorf("%w: userId = %d", errs.ErrPreferenceNotFound, userID)
	}
	return pref, err
}

func (d *preferenceDAO) Save(ctx context.Context, pref UserPreference) error {
	now := time.Now().UnixMilli()
	pref.Ctime, pref.Utime = now, now
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"channels",
			"quiet_hours_start",
			"quiet_hours_end",
			"timezone",
			"utime",
		}),
	}).Create(&pref).Error
}
