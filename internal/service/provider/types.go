package provider

import (
	"context"
)

// Payload 发给渠道的内容，已经过脱敏处理
type Payload struct {
	Title string
	Body  string
	// Tag 通知类型或告警类型，供应商可以用它做统计
	Tag  string
	Data map[string]string
}

// Result 供应商的发送结果
// Success 为 false 时 Error 描述供应商返回的失败原因
type Result struct {
	Success   bool
	MessageID string
	Error     string
}

// Provider 供应商接口
// 返回 error 和返回 Success=false 的 Result，调用方一视同仁
//
//go:generate mockgen -source=./types.go -destination=./mocks/provider.mock.go -package=providermocks
type Provider interface {
	// Send address 是推送 token 或者邮箱地址
	Send(ctx context.Context, address string, payload Payload) (Result, error)
}

// BatchProvider 支持一次发给多个地址，结果和 addresses 一一对应
type BatchProvider interface {
	Provider
	SendBatch(ctx context.Context, addresses []string, payload Payload) ([]Result, error)
}
