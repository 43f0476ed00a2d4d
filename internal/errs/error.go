package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter         = errors.New("参数错误")
	ErrNotificationNotFound     = errors.New("通知记录不存在")
	ErrCreateNotificationFailed = errors.New("创建通知失败")
	ErrNotificationDuplicate    = errors.New("通知记录主键冲突")
	ErrPreferenceNotFound       = errors.New("用户偏好不存在")

	// 渠道层错误，属于 TransportFailure
	ErrTransportFailure       = errors.New("渠道发送失败")
	ErrChannelNotImplemented  = errors.New("渠道尚未实现")
	ErrChannelDisabled        = errors.New("渠道未启用")
	ErrNoChannelEnabled       = errors.New("无可用渠道")
	ErrRetryExhausted         = errors.New("重试次数已用完")
	ErrInvalidTimezone        = errors.New("时区配置错误")
	ErrInvalidQuietHours      = errors.New("免打扰时段配置错误")
	ErrBehaviorNotFound       = errors.New("用户行为数据不存在")
	ErrInvalidRule            = errors.New("规则配置错误")
	ErrNoEscalationRule       = errors.New("没有适用的紧急升级规则")
	ErrAlertNotFound          = errors.New("紧急告警不存在")
	ErrAlertDuplicate         = errors.New("紧急告警主键冲突")
	ErrAlertClosed            = errors.New("紧急告警已结束")
	ErrNoMoreEscalationLevels = errors.New("没有更高的升级级别")
	ErrLevelAlreadyFired      = errors.New("该升级级别已经触发过")
)
