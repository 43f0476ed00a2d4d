package escalation

import (
	"strings"

	"gitee.com/flycash/care-notification/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

// render 替换模板占位符，联系人名字每个接收人不同，其余取自告警
func render(tpl string, alert domain.EmergencyAlert, contact domain.EmergencyContact) string {
	return strings.NewReplacer(
		"{{patientName}}", alert.PatientName,
		"{{contactName}}", contact.Name,
		"{{alertType}}", string(alert.Type),
		"{{severity}}", string(alert.Severity),
		"{{message}}", alert.Message,
		"{{time}}", alert.TriggeredAt.Format(timeLayout),
		"{{acknowledgedBy}}", alert.AcknowledgedBy,
	).Replace(tpl)
}
