package channel

import (
	"slices"

	"gitee.com/flycash/care-notification/internal/domain"
)

var (
	// urgentOrder URGENT 通知固定按这个顺序尝试
	urgentOrder = []domain.Channel{domain.ChannelPush, domain.ChannelEmail, domain.ChannelSMS, domain.ChannelInApp}
	// defaultOrder 调用方没有指定渠道时使用
	defaultOrder = []domain.Channel{domain.ChannelPush, domain.ChannelEmail, domain.ChannelInApp}
	// preferredOrder 用户显式开启的这些渠道会被提到最前面
	preferredOrder = []domain.Channel{domain.ChannelPush, domain.ChannelEmail}
)

// Order 计算渠道尝试顺序，结果里没有重复的渠道
// 不做是否开启的过滤，那是发送时的事情
func Order(req domain.NotificationRequest, prefs domain.UserPreferences) []domain.Channel {
	if req.Priority == domain.PriorityUrgent {
		return slices.Clone(urgentOrder)
	}
	requested := req.Channels
	if len(requested) == 0 {
		requested = defaultOrder
	}
	res := make([]domain.Channel, 0, len(requested))
	for _, ch := range preferredOrder {
		if slices.Contains(requested, ch) && prefs.ExplicitlyEnabled(ch) {
			res = append(res, ch)
		}
	}
	for _, ch := range requested {
		if !slices.Contains(res, ch) {
			res = append(res, ch)
		}
	}
	return res
}
