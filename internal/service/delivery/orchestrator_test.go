package delivery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/event/audit"
	evtmocks "gitee.com/flycash/care-notification/internal/event/mocks"
	"gitee.com/flycash/care-notification/internal/pkg/retry"
	"gitee.com/flycash/care-notification/internal/repository"
	repomocks "gitee.com/flycash/care-notification/internal/repository/mocks"
	"gitee.com/flycash/care-notification/internal/service/channel"
	"gitee.com/flycash/care-notification/internal/service/provider"
	providermocks "gitee.com/flycash/care-notification/internal/service/provider/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// 2025-03-01 15:00 UTC，上海时间 23:00
var fixedNow = time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)

func newSender(t *testing.T, providers map[domain.Channel]provider.Provider) *channel.Sender {
	t.Helper()
	sender, err := channel.NewSender(channel.NewDispatcher(providers), channel.Config{
		Retry: retry.Config{
			Type: retry.TypeExponential,
			ExponentialBackoff: &retry.ExponentialBackoffConfig{
				InitialInterval: time.Millisecond,
				MaxRetries:      3,
			},
		},
	})
	require.NoError(t, err)
	return sender
}

func newRequest(p domain.Priority) domain.NotificationRequest {
	return domain.NotificationRequest{
		ID:       1001,
		UserID:   7,
		Title:    "服药提醒",
		Message:  "该吃降压药了",
		Type:     domain.TypeMedicationReminder,
		Priority: p,
		Channels: []domain.Channel{domain.ChannelPush, domain.ChannelEmail, domain.ChannelInApp},
		Metadata: map[string]string{domain.MetadataMedicationID: "med-1"},
	}
}

func pushAndEmail() domain.UserPreferences {
	return domain.UserPreferences{
		UserID: 7,
		Channels: map[domain.Channel]domain.ChannelPreference{
			domain.ChannelPush:  {Enabled: true, Address: "token-7"},
			domain.ChannelEmail: {Enabled: true, Address: "user7@example.com"},
		},
		Timezone: "UTC",
	}
}

func ok(id string) (provider.Result, error) {
	return provider.Result{Success: true, MessageID: id}, nil
}

func TestOrchestrator_Deliver(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		req   domain.NotificationRequest
		prefs domain.UserPreferences
		mock  func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer)

		wantSuccess  bool
		wantReason   string
		wantChannels []domain.Channel
		wantSchedule time.Time
	}{
		{
			name:  "NORMAL第一个渠道成功就停止",
			req:   newRequest(domain.PriorityNormal),
			prefs: pushAndEmail(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).Return(ok("p-1"))
				email := providermocks.NewMockProvider(ctrl)
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(1)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{
					domain.ChannelPush:  push,
					domain.ChannelEmail: email,
				}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelPush},
		},
		{
			name:  "NORMAL推送失败后改用邮件",
			req:   newRequest(domain.PriorityNormal),
			prefs: pushAndEmail(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).
					Return(provider.Result{Error: "invalid token"}, nil)
				email := providermocks.NewMockProvider(ctrl)
				email.EXPECT().Send(gomock.Any(), "user7@example.com", gomock.Any()).Return(ok("e-1"))
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(2)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{
					domain.ChannelPush:  push,
					domain.ChannelEmail: email,
				}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelPush, domain.ChannelEmail},
		},
		{
			name:  "HIGH尝试全部开启的渠道",
			req:   newRequest(domain.PriorityHigh),
			prefs: pushAndEmail(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).Return(ok("p-1"))
				email := providermocks.NewMockProvider(ctrl)
				email.EXPECT().Send(gomock.Any(), "user7@example.com", gomock.Any()).Return(ok("e-1"))
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(2)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{
					domain.ChannelPush:  push,
					domain.ChannelEmail: email,
				}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelPush, domain.ChannelEmail},
		},
		{
			name: "免打扰时段延后到结束时间",
			req:  newRequest(domain.PriorityNormal),
			prefs: func() domain.UserPreferences {
				p := pushAndEmail()
				p.Timezone = "Asia/Shanghai"
				p.QuietHours = domain.QuietHours{Start: "22:00", End: "07:00"}
				return p
			}(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().UpdateScheduling(gomock.Any(), uint64(1001), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uint64, at time.Time) error {
						if !at.Equal(time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)) {
							return errors.New("延后时间不对")
						}
						return nil
					})
				return map[domain.Channel]provider.Provider{domain.ChannelPush: push}, repo, evtmocks.NewMockProducer(ctrl)
			},
			wantReason:   domain.FailureReasonDeferred,
			wantSchedule: time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "URGENT忽略免打扰",
			req:  newRequest(domain.PriorityUrgent),
			prefs: func() domain.UserPreferences {
				p := pushAndEmail()
				p.Timezone = "Asia/Shanghai"
				p.QuietHours = domain.QuietHours{Start: "22:00", End: "07:00"}
				return p
			}(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).Return(ok("p-1"))
				email := providermocks.NewMockProvider(ctrl)
				email.EXPECT().Send(gomock.Any(), "user7@example.com", gomock.Any()).Return(ok("e-1"))
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(2)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{
					domain.ChannelPush:  push,
					domain.ChannelEmail: email,
				}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelPush, domain.ChannelEmail},
		},
		{
			name: "URGENT开启了短信记录为未实现",
			req:  newRequest(domain.PriorityUrgent),
			prefs: func() domain.UserPreferences {
				p := pushAndEmail()
				p.Channels[domain.ChannelSMS] = domain.ChannelPreference{Enabled: true, Address: "+8613800000000"}
				return p
			}(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).Return(ok("p-1"))
				email := providermocks.NewMockProvider(ctrl)
				email.EXPECT().Send(gomock.Any(), "user7@example.com", gomock.Any()).Return(ok("e-1"))
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(3)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{
					domain.ChannelPush:  push,
					domain.ChannelEmail: email,
				}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelPush, domain.ChannelEmail, domain.ChannelSMS},
		},
		{
			name:  "全部渠道失败",
			req:   newRequest(domain.PriorityLow),
			prefs: pushAndEmail(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).
					Return(provider.Result{Error: "invalid token"}, nil)
				email := providermocks.NewMockProvider(ctrl)
				email.EXPECT().Send(gomock.Any(), "user7@example.com", gomock.Any()).
					Return(provider.Result{Error: "mailbox full"}, nil)
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsFailed(gomock.Any(), uint64(1001), domain.FailureReasonAllFailed, gomock.Len(2)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{
					domain.ChannelPush:  push,
					domain.ChannelEmail: email,
				}, repo, producer
			},
			wantReason:   domain.FailureReasonAllFailed,
			wantChannels: []domain.Channel{domain.ChannelPush, domain.ChannelEmail},
		},
		{
			name:  "没有开启任何渠道",
			req:   newRequest(domain.PriorityNormal),
			prefs: domain.UserPreferences{UserID: 7},
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsFailed(gomock.Any(), uint64(1001), domain.FailureReasonNoChannel, gomock.Len(0)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{domain.ChannelPush: providermocks.NewMockProvider(ctrl)}, repo, producer
			},
			wantReason: domain.FailureReasonNoChannel,
		},
		{
			name: "请求不合法",
			req: func() domain.NotificationRequest {
				r := newRequest(domain.PriorityNormal)
				r.UserID = 0
				return r
			}(),
			prefs: pushAndEmail(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsFailed(gomock.Any(), uint64(1001), domain.FailureReasonInvalidRequest, gomock.Len(0)).Return(nil)
				return map[domain.Channel]provider.Provider{domain.ChannelPush: providermocks.NewMockProvider(ctrl)}, repo, evtmocks.NewMockProducer(ctrl)
			},
			wantReason: domain.FailureReasonInvalidRequest,
		},
		{
			name:  "站内信默认发给用户ID",
			req:   newRequest(domain.PriorityNormal),
			prefs: domain.UserPreferences{UserID: 7, Channels: map[domain.Channel]domain.ChannelPreference{domain.ChannelInApp: {Enabled: true}}},
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				inApp := providermocks.NewMockProvider(ctrl)
				inApp.EXPECT().Send(gomock.Any(), "7", gomock.Any()).Return(ok("i-1"))
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(1)).Return(nil)
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(nil)
				return map[domain.Channel]provider.Provider{domain.ChannelInApp: inApp}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelInApp},
		},
		{
			name:  "落库和审计失败不影响结果",
			req:   newRequest(domain.PriorityNormal),
			prefs: pushAndEmail(),
			mock: func(ctrl *gomock.Controller) (map[domain.Channel]provider.Provider, repository.NotificationRepository, audit.Producer) {
				push := providermocks.NewMockProvider(ctrl)
				push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).Return(ok("p-1"))
				repo := repomocks.NewMockNotificationRepository(ctrl)
				repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Any()).Return(errors.New("db down"))
				producer := evtmocks.NewMockProducer(ctrl)
				producer.EXPECT().ProduceDelivery(gomock.Any(), gomock.Any()).Return(errors.New("mq down"))
				return map[domain.Channel]provider.Provider{domain.ChannelPush: push}, repo, producer
			},
			wantSuccess:  true,
			wantChannels: []domain.Channel{domain.ChannelPush},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			providers, repo, producer := tc.mock(ctrl)
			o := NewOrchestrator(newSender(t, providers), repo, producer,
				WithClock(func() time.Time { return fixedNow }))

			res := o.Deliver(context.Background(), tc.req, tc.prefs)
			assert.Equal(t, tc.req.ID, res.NotificationID)
			assert.Equal(t, tc.wantSuccess, res.OverallSuccess)
			assert.Equal(t, tc.wantReason, res.FailureReason)
			assert.True(t, tc.wantSchedule.Equal(res.ScheduledFor))
			assert.Equal(t, fixedNow, res.DeliveredAt)

			got := make([]domain.Channel, 0, len(res.ChannelResults))
			for _, r := range res.ChannelResults {
				got = append(got, r.Channel)
				assert.LessOrEqual(t, r.RetryCount, 3)
			}
			assert.ElementsMatch(t, tc.wantChannels, got)
		})
	}
}

func TestOrchestrator_DeliverUnimplementedChannel(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkAsFailed(gomock.Any(), uint64(1001), domain.FailureReasonAllFailed, gomock.Len(1)).Return(nil)
	req := newRequest(domain.PriorityUrgent)
	prefs := domain.UserPreferences{
		UserID:   7,
		Channels: map[domain.Channel]domain.ChannelPreference{domain.ChannelSMS: {Enabled: true, Address: "+8613800000000"}},
	}
	o := NewOrchestrator(newSender(t, nil), repo, nil)

	res := o.Deliver(context.Background(), req, prefs)
	require.Len(t, res.ChannelResults, 1)
	sms := res.ChannelResults[0]
	assert.Equal(t, domain.ChannelSMS, sms.Channel)
	assert.False(t, sms.Success)
	assert.Equal(t, 0, sms.RetryCount)
	assert.True(t, strings.Contains(sms.Error, string(domain.ChannelSMS)))
}

func TestOrchestrator_DeliverRetriesTransientErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	push := providermocks.NewMockProvider(ctrl)
	gomock.InOrder(
		push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).
			Return(provider.Result{Error: "network unreachable"}, nil),
		push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).
			Return(provider.Result{Success: true, MessageID: "p-2"}, nil),
	)
	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(1)).Return(nil)
	o := NewOrchestrator(newSender(t, map[domain.Channel]provider.Provider{domain.ChannelPush: push}), repo, nil)

	res := o.Deliver(context.Background(), newRequest(domain.PriorityNormal), pushAndEmail())
	require.True(t, res.OverallSuccess)
	require.Len(t, res.ChannelResults, 1)
	assert.Equal(t, 1, res.ChannelResults[0].RetryCount)
	assert.Equal(t, "p-2", res.ChannelResults[0].MessageID)
}

func TestOrchestrator_DeliverSanitizesPayload(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	push := providermocks.NewMockProvider(ctrl)
	push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload provider.Payload) (provider.Result, error) {
			assert.Equal(t, "提醒", payload.Title)
			assert.Equal(t, "您有一条新的健康提醒", payload.Body)
			assert.Equal(t, string(domain.TypeMedicationReminder), payload.Tag)
			assert.Equal(t, "1001", payload.Data["notificationId"])
			assert.Equal(t, "med-1", payload.Data[domain.MetadataMedicationID])
			return ok("p-1")
		})
	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Any()).Return(nil)
	sanitizer := SanitizerFunc(func(_ context.Context, _, _ string) (string, string) {
		return "提醒", "您有一条新的健康提醒"
	})
	o := NewOrchestrator(newSender(t, map[domain.Channel]provider.Provider{domain.ChannelPush: push}), repo, nil,
		WithSanitizer(sanitizer))

	res := o.Deliver(context.Background(), newRequest(domain.PriorityNormal), pushAndEmail())
	assert.True(t, res.OverallSuccess)
}

func TestOrchestrator_DeliverIgnoresCallerCancel(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	push := providermocks.NewMockProvider(ctrl)
	push.EXPECT().Send(gomock.Any(), "token-7", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ provider.Payload) (provider.Result, error) {
			cancel()
			assert.NoError(t, ctx.Err())
			return provider.Result{Error: "invalid token"}, nil
		})
	email := providermocks.NewMockProvider(ctrl)
	email.EXPECT().Send(gomock.Any(), "user7@example.com", gomock.Any()).Return(ok("e-1"))
	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkAsDelivered(gomock.Any(), uint64(1001), gomock.Len(2)).Return(nil)
	o := NewOrchestrator(newSender(t, map[domain.Channel]provider.Provider{
		domain.ChannelPush:  push,
		domain.ChannelEmail: email,
	}), repo, nil)

	res := o.Deliver(ctx, newRequest(domain.PriorityNormal), pushAndEmail())
	assert.True(t, res.OverallSuccess)
}
