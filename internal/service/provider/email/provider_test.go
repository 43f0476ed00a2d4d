package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gitee.com/flycash/care-notification/internal/errs"
	"gitee.com/flycash/care-notification/internal/service/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "缺少token",
			cfg:     Config{From: "care@example.com"},
			wantErr: errs.ErrInvalidParameter,
		},
		{
			name:    "缺少发件人",
			cfg:     Config{ServerToken: "token"},
			wantErr: errs.ErrInvalidParameter,
		},
		{
			name: "配置完整",
			cfg:  Config{ServerToken: "token", From: "care@example.com"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewProvider(tc.cfg)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestProvider_Send(t *testing.T) {
	t.Parallel()

	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"family@example.com","MessageID":"pm-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer server.Close()

	p, err := NewProvider(Config{ServerToken: "token", From: "care@example.com", BaseURL: server.URL})
	require.NoError(t, err)

	res, err := p.Send(t.Context(), "family@example.com", provider.Payload{
		Title: "紧急告警",
		Body:  "检测到跌倒\n请尽快确认",
		Tag:   "FALL_DETECTED",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "pm-1", res.MessageID)
	assert.Equal(t, "family@example.com", received["To"])
	assert.Equal(t, "紧急告警", received["Subject"])
	assert.Equal(t, "<p>检测到跌倒<br/>请尽快确认</p>", received["HtmlBody"])
}

func TestProvider_SendEmptyAddress(t *testing.T) {
	t.Parallel()
	p, err := NewProvider(Config{ServerToken: "token", From: "care@example.com"})
	require.NoError(t, err)
	_, err = p.Send(t.Context(), "", provider.Payload{})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}
