package repository

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"adms-gateway/internal/config"
)

// SupabaseStore Supabase/PostgREST 后端存储客户端
// 所有调用固定路由到 attendance schema（profile 头），service role key 鉴权
// 每次调用受统一超时约束，不做重试——失败降级为"跳过、记日志、继续"
type SupabaseStore struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewSupabaseStore 创建存储客户端
func NewSupabaseStore(cfg *config.SupabaseConfig, logger *zap.Logger) *SupabaseStore {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("apikey", cfg.ServiceKey).
		SetHeader("Authorization", "Bearer "+cfg.ServiceKey).
		SetHeader("Accept-Profile", cfg.Schema).
		SetHeader("Content-Profile", cfg.Schema).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SupabaseStore{
		httpClient: client,
		logger:     logger,
	}
}

func (s *SupabaseStore) errFromResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.IsError() {
		return &StoreError{Op: op, Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}
