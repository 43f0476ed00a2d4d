package batching

import (
	"fmt"
	"strings"

	"gitee.com/flycash/care-notification/internal/domain"
)

const summaryMaxRunes = 80

var typeTitles = map[domain.NotificationType]string{
	domain.TypeMedicationReminder:  "用药提醒",
	domain.TypeMedicationMissed:    "漏服提醒",
	domain.TypeAppointmentReminder: "预约提醒",
	domain.TypeTaskReminder:        "任务提醒",
	domain.TypeCareGroupUpdate:     "照护组动态",
	domain.TypeSystemNotification:  "系统通知",
	domain.TypeEmergencyAlert:      "紧急告警",
}

func typeTitle(t domain.NotificationType) string {
	if title, ok := typeTitles[t]; ok {
		return title
	}
	return string(t)
}

// BuildDigest 按通知类型分节，节的顺序是类型第一次出现的顺序
func BuildDigest(ns []domain.Notification) domain.DigestContent {
	sections := make([]domain.DigestSection, 0, 4)
	index := make(map[domain.NotificationType]int, 4)
	high := 0
	for i := range ns {
		n := ns[i]
		if n.Priority.IsHighOrAbove() {
			high++
		}
		idx, ok := index[n.Type]
		if !ok {
			idx = len(sections)
			index[n.Type] = idx
			sections = append(sections, domain.DigestSection{Type: n.Type, Title: typeTitle(n.Type)})
		}
		sections[idx].Items = append(sections[idx].Items, domain.DigestItem{
			NotificationID: n.ID,
			Title:          n.Title,
			Summary:        truncate(n.Message, summaryMaxRunes),
			Priority:       n.Priority,
		})
	}
	return domain.DigestContent{
		Title:             fmt.Sprintf("您有 %d 条新通知", len(ns)),
		Summary:           summarize(sections),
		Sections:          sections,
		TotalCount:        len(ns),
		HighPriorityCount: high,
	}
}

// summarize 例如 "您有 3 条用药提醒、1 条任务提醒。"
func summarize(sections []domain.DigestSection) string {
	if len(sections) == 0 {
		return "暂无新通知。"
	}
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, fmt.Sprintf("%d 条%s", len(s.Items), s.Title))
	}
	return "您有 " + strings.Join(parts, "、") + "。"
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
