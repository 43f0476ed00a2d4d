package escalation

import (
	"context"
	"fmt"
	"strconv"

	"gitee.com/flycash/care-notification/internal/domain"
	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

type target struct {
	contact domain.EmergencyContact
	channel domain.Channel
}

// levelTargets 联系人自己开启了渠道并且有地址才发送
func levelTargets(recipients []domain.EmergencyContact, channels []domain.Channel) []target {
	res := make([]target, 0, len(recipients)*len(channels))
	for _, c := range recipients {
		for _, ch := range channels {
			if c.Accepts(ch) {
				res = append(res, target{contact: c, channel: ch})
			}
		}
	}
	return res
}

// fanOut 并发发送，单个联系人或渠道失败不影响其他发送，也不重试
// 结果顺序和 targets 一致
func (s *Service) fanOut(ctx context.Context, alert domain.EmergencyAlert, targets []target,
	message func(c domain.EmergencyContact) string,
) []domain.ContactNotification {
	results := make([]domain.ContactNotification, len(targets))
	var eg errgroup.Group
	eg.SetLimit(s.cfg.FanOutConcurrency)
	for i, tg := range targets {
		eg.Go(func() error {
			results[i] = s.sendOne(ctx, alert, tg, message(tg.contact))
			return nil
		})
	}
	_ = eg.Wait()

	var failures error
	for _, r := range results {
		if !r.Success {
			failures = multierror.Append(failures, fmt.Errorf("%s/%s: %s", r.ContactID, r.Channel, r.Error))
		}
	}
	if failures != nil {
		s.logger.Warn("部分联系人通知失败",
			elog.Any("alertId", alert.ID),
			elog.FieldErr(failures))
	}
	return results
}

func (s *Service) sendOne(ctx context.Context, alert domain.EmergencyAlert, tg target, body string) (res domain.ContactNotification) {
	res = domain.ContactNotification{
		ContactID:   tg.contact.ID,
		ContactName: tg.contact.Name,
		Channel:     tg.channel,
	}
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Error = fmt.Sprintf("%v", r)
		}
		res.SentAt = s.now()
	}()
	p, err := s.dispatcher.Provider(tg.channel)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	out, err := p.Send(ctx, tg.contact.Addresses[tg.channel], provider.Payload{
		Title: fmt.Sprintf("紧急告警：%s", alert.PatientName),
		Body:  body,
		Tag:   string(alert.Type),
		Data: map[string]string{
			"alertId":  strconv.FormatUint(alert.ID, 10),
			"severity": string(alert.Severity),
			"level":    strconv.Itoa(alert.CurrentLevel),
		},
	})
	switch {
	case err != nil:
		res.Error = fmt.Errorf("%w: %w", errs.ErrTransportFailure, err).Error()
	case !out.Success:
		res.Error = out.Error
		if res.Error == "" {
			res.Error = errs.ErrTransportFailure.Error()
		}
	default:
		res.Success = true
		res.MessageID = out.MessageID
	}
	return res
}

// previouslyNotified 之前各级别成功通知过的联系人，每人只发一次
// 渠道取该联系人最早一次成功送达的渠道
func previouslyNotified(alert domain.EmergencyAlert, contacts []domain.EmergencyContact) []target {
	byID := make(map[string]domain.EmergencyContact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}
	seen := make(map[string]struct{}, len(contacts))
	res := make([]target, 0, len(contacts))
	for _, evt := range alert.EscalationHistory {
		for _, n := range evt.Notifications {
			c, ok := byID[n.ContactID]
			if !n.Success || !ok {
				continue
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			res = append(res, target{contact: c, channel: n.Channel})
		}
	}
	return res
}
