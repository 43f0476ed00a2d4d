package repository

import (
	"context"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	"github.com/ecodeclub/ekit/sqlx"
)

// PreferenceRepository 定时重投时需要重新加载用户偏好
//
//go:generate mockgen -source=./preference.go -destination=./mocks/preference.mock.go -package=repomocks
type PreferenceRepository interface {
	Get(ctx context.Context, userID int64) (domain.UserPreferences, error)
	Save(ctx context.Context, prefs domain.UserPreferences) error
}

type preferenceRepository struct {
	dao dao.PreferenceDAO
}

func NewPreferenceRepository(d dao.PreferenceDAO) PreferenceRepository {
	return &preferenceRepository{dao: d}
}

func (r *preferenceRepository) Get(ctx context.Context, userID int64) (domain.UserPreferences, error) {
	entity, err := r.dao.GetByUserID(ctx, userID)
	if err != nil {
		return domain.UserPreferences{}, err
	}
	return domain.UserPreferences{
		UserID:   entity.UserID,
		Channels: entity.Channels.Val,
		QuietHours: domain.QuietHours{
			Start: entity.QuietHoursStart,
			End:   entity.QuietHoursEnd,
		},
		Timezone: entity.Timezone,
	}, nil
}

func (r *preferenceRepository) Save(ctx context.Context, prefs domain.UserPreferences) error {
	if err := prefs.QuietHours.Validate(); err != nil {
		return err
	}
	if _, err := prefs.Location(); err != nil {
		return err
	}
	return r.dao.Save(ctx, dao.UserPreference{
		UserID: prefs.UserID,
		Channels: sqlx.JsonColumn[map[domain.Channel]domain.ChannelPreference]{
			Val:   prefs.Channels,
			Valid: prefs.Channels != nil,
		},
		QuietHoursStart: prefs.QuietHours.Start,
		QuietHoursEnd:   prefs.QuietHours.End,
		Timezone:        prefs.Timezone,
	})
}
