package repository

import (
	"context"
	"testing"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	daomocks "gitee.com/flycash/care-notification/internal/repository/dao/mocks"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPreferenceRepository_Get(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	channels := map[domain.Channel]domain.ChannelPreference{
		domain.ChannelEmail: {Enabled: true, Address: "a@b.com"},
	}
	d := daomocks.NewMockPreferenceDAO(ctrl)
	d.EXPECT().GetByUserID(gomock.Any(), int64(7)).Return(dao.UserPreference{
		UserID:          7,
		Channels:        sqlx.JsonColumn[map[domain.Channel]domain.ChannelPreference]{Val: channels, Valid: true},
		QuietHoursStart: "22:00",
		QuietHoursEnd:   "07:00",
		Timezone:        "Asia/Shanghai",
	}, nil)

	prefs, err := NewPreferenceRepository(d).Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.UserPreferences{
		UserID:     7,
		Channels:   channels,
		QuietHours: domain.QuietHours{Start: "22:00", End: "07:00"},
		Timezone:   "Asia/Shanghai",
	}, prefs)
}

func TestPreferenceRepository_Save(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		prefs   domain.UserPreferences
		mock    func(d *daomocks.MockPreferenceDAO)
		wantErr error
	}{
		{
			name:  "保存成功",
			prefs: domain.UserPreferences{UserID: 7, QuietHours: domain.QuietHours{Start: "22:00", End: "07:00"}, Timezone: "UTC"},
			mock: func(d *daomocks.MockPreferenceDAO) {
				d.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p dao.UserPreference) error {
					assert.Equal(t, int64(7), p.UserID)
					assert.Equal(t, "22:00", p.QuietHoursStart)
					assert.False(t, p.Channels.Valid)
					return nil
				})
			},
		},
		{
			name:    "时区错误",
			prefs:   domain.UserPreferences{UserID: 7, Timezone: "Mars/Base"},
			mock:    func(_ *daomocks.MockPreferenceDAO) {},
			wantErr: errs.ErrInvalidTimezone,
		},
		{
			name:    "免打扰格式错误",
			prefs:   domain.UserPreferences{UserID: 7, QuietHours: domain.QuietHours{Start: "25:00", End: "07:00"}},
			mock:    func(_ *daomocks.MockPreferenceDAO) {},
			wantErr: errs.ErrInvalidQuietHours,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			d := daomocks.NewMockPreferenceDAO(ctrl)
			tc.mock(d)
			err := NewPreferenceRepository(d).Save(context.Background(), tc.prefs)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
