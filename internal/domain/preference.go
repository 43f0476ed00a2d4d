package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitee.com/flycash/care-notification/internal/errs"
)

// ChannelPreference 用户在某个渠道上的设置
type ChannelPreference struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"` // 邮箱/推送 token/手机号
}

// UserPreferences 调用方随请求传入，核心逻辑只读
type UserPreferences struct {
	UserID     int64                         `json:"userId"`
	Channels   map[Channel]ChannelPreference `json:"channels"`
	QuietHours QuietHours                    `json:"quietHours"`
	Timezone   string                        `json:"timezone"`
}

// ChannelEnabled 明确开启且有地址才算可用
func (p UserPreferences) ChannelEnabled(ch Channel) bool {
	cp, ok := p.Channels[ch]
	return ok && cp.Enabled && cp.Address != ""
}

// ExplicitlyEnabled 用户显式开启了该渠道
func (p UserPreferences) ExplicitlyEnabled(ch Channel) bool {
	cp, ok := p.Channels[ch]
	return ok && cp.Enabled
}

func (p UserPreferences) Address(ch Channel) string {
	return p.Channels[ch].Address
}

func (p UserPreferences) Location() (*time.Location, error) {
	return LoadLocation(p.Timezone)
}

// LoadLocation 空时区按 UTC 处理
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidTimezone, tz)
	}
	return loc, nil
}

// QuietHours 免打扰时段 [Start, End)，Start > End 表示跨越午夜
type QuietHours struct {
	Start string `json:"start" yaml:"start"` // HH:MM
	End   string `json:"end" yaml:"end"`     // HH:MM
}

func (q QuietHours) IsConfigured() bool {
	if q.Start == "" || q.End == "" {
		return false
	}
	s, e, err := q.minutes()
	return err == nil && s != e
}

func (q QuietHours) Validate() error {
	if q.Start == "" && q.End == "" {
		return nil
	}
	_, _, err := q.minutes()
	return err
}

// Contains t 需要已经转换到用户时区
func (q QuietHours) Contains(t time.Time) bool {
	if !q.IsConfigured() {
		return false
	}
	start, end, _ := q.minutes()
	m := t.Hour()*60 + t.Minute()
	if start < end {
		return m >= start && m < end
	}
	// 跨越午夜
	return m >= start || m < end
}

// NextEnd 返回 t 之后最近的一次免打扰结束时间
func (q QuietHours) NextEnd(t time.Time) time.Time {
	_, end, _ := q.minutes()
	return nextClock(t, end)
}

// NextStart 返回 t 之后最近的一次免打扰开始时间
func (q QuietHours) NextStart(t time.Time) time.Time {
	start, _, _ := q.minutes()
	return nextClock(t, start)
}

func (q QuietHours) minutes() (int, int, error) {
	s, err := parseClock(q.Start)
	if err != nil {
		return 0, 0, err
	}
	e, err := parseClock(q.End)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}

// nextClock 当天的 minuteOfDay 时刻，如果不晚于 t 则顺延一天
func nextClock(t time.Time, minuteOfDay int) time.Time {
	candidate := AtMinute(t, minuteOfDay)
	if !candidate.After(t) {
		candidate = AtMinute(t.AddDate(0, 0, 1), minuteOfDay)
	}
	return candidate
}

// AtMinute t 所在日期（t 的时区）的某一分钟
func AtMinute(t time.Time, minuteOfDay int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, t.Location())
}

// AtHour t 所在日期的整点
func AtHour(t time.Time, hour int) time.Time {
	return AtMinute(t, hour*60)
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidQuietHours, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidQuietHours, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidQuietHours, s)
	}
	return h*60 + m, nil
}
