package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/mrz1836/postmark"
)

type Config struct {
	ServerToken  string `yaml:"serverToken"`
	AccountToken string `yaml:"accountToken"`
	From         string `yaml:"from"`
	// BaseURL 为空时使用 postmark 官方地址
	BaseURL    string `yaml:"baseURL"`
	TrackOpens bool   `yaml:"trackOpens"`
}

// Provider 基于 postmark 的邮件供应商
type Provider struct {
	client *postmark.Client
	cfg    Config
}

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: 缺少 postmark serverToken", errs.ErrInvalidParameter)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: 缺少发件人", errs.ErrInvalidParameter)
	}
	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return &Provider{client: client, cfg: cfg}, nil
}

func (p *Provider) Send(ctx context.Context, address string, payload provider.Payload) (provider.Result, error) {
	if address == "" {
		return provider.Result{}, fmt.Errorf("%w: 收件人为空", errs.ErrInvalidParameter)
	}
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       p.cfg.From,
		To:         address,
		Subject:    payload.Title,
		Tag:        payload.Tag,
		TextBody:   payload.Body,
		HTMLBody:   toHTML(payload.Body),
		TrackOpens: p.cfg.TrackOpens,
	})
	if err != nil {
		return provider.Result{}, err
	}
	if resp.ErrorCode > 0 {
		return provider.Result{
			Success: false,
			Error:   fmt.Sprintf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		}, nil
	}
	return provider.Result{Success: true, MessageID: resp.MessageID}, nil
}

func toHTML(body string) string {
	lines := strings.Split(html.EscapeString(body), "\n")
	return "<p>" + strings.Join(lines, "<br/>") + "</p>"
}
