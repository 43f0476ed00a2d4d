package repository

import (
	"context"
	"testing"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/repository/dao"
	daomocks "gitee.com/flycash/care-notification/internal/repository/dao/mocks"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAlertRepository_GetByID(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := daomocks.NewMockAlertDAO(ctrl)
	d.EXPECT().GetByID(gomock.Any(), uint64(1)).Return(dao.EmergencyAlert{
		ID:             1,
		UserID:         2,
		Type:           string(domain.AlertTypeFall),
		Severity:       string(domain.SeverityCritical),
		Status:         string(domain.AlertStatusAcknowledged),
		CurrentLevel:   2,
		TriggeredAt:    1000,
		AcknowledgedAt: 5000,
		AcknowledgedBy: "c1",
	}, nil)
	d.EXPECT().FindEvents(gomock.Any(), uint64(1)).Return([]dao.EscalationEvent{
		{ID: 10, AlertID: 1, Level: 1, FiredAt: 1000, Notifications: sqlx.JsonColumn[[]domain.ContactNotification]{
			Val: []domain.ContactNotification{{ContactID: "c1", Channel: domain.ChannelPush, Success: true}}, Valid: true,
		}},
		{ID: 11, AlertID: 1, Level: 2, FiredAt: 3000},
	}, nil)

	alert, err := NewAlertRepository(d).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, alert.IsAcknowledged())
	require.NotNil(t, alert.AcknowledgedAt)
	assert.Equal(t, time.UnixMilli(5000), *alert.AcknowledgedAt)
	require.Len(t, alert.EscalationHistory, 2)
	assert.True(t, alert.FiredLevel(2))
	assert.Equal(t, "c1", alert.EscalationHistory[0].Notifications[0].ContactID)
}

func TestAlertRepository_AppendEvent(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := daomocks.NewMockAlertDAO(ctrl)
	d.EXPECT().AppendEvent(gomock.Any(), gomock.Any(), string(domain.AlertStatusExhausted)).
		DoAndReturn(func(_ context.Context, evt dao.EscalationEvent, _ string) error {
			assert.Equal(t, uint64(1), evt.AlertID)
			assert.Equal(t, 3, evt.Level)
			assert.True(t, evt.Notifications.Valid)
			return nil
		})

	alert := domain.EmergencyAlert{ID: 1, Status: domain.AlertStatusExhausted, CurrentLevel: 3}
	err := NewAlertRepository(d).AppendEvent(context.Background(), alert, domain.EscalationEvent{
		ID:      20,
		AlertID: 1,
		Level:   3,
		FiredAt: time.Now(),
	})
	assert.NoError(t, err)
}

func TestAlertRepository_Contacts(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	contacts := []domain.EmergencyContact{{
		ID:                      "c1",
		Name:                    "张三",
		Addresses:               map[domain.Channel]string{domain.ChannelPush: "push-c1"},
		IsActive:                true,
		NotificationPreferences: map[domain.Channel]bool{domain.ChannelPush: true},
	}}
	var saved dao.EmergencyAlert
	d := daomocks.NewMockAlertDAO(ctrl)
	d.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a dao.EmergencyAlert) (dao.EmergencyAlert, error) {
			saved = a
			return a, nil
		})
	d.EXPECT().GetByID(gomock.Any(), uint64(1)).DoAndReturn(func(_ context.Context, _ uint64) (dao.EmergencyAlert, error) {
		return saved, nil
	})

	repo := NewAlertRepository(d)
	err := repo.Create(context.Background(), domain.EmergencyAlert{
		ID:       1,
		UserID:   7,
		Type:     domain.AlertTypeFall,
		Severity: domain.SeverityCritical,
		Status:   domain.AlertStatusOpen,
	}, contacts)
	require.NoError(t, err)
	assert.True(t, saved.Contacts.Valid)

	got, err := repo.FindContacts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, contacts, got)
}
