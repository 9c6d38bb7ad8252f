package repository

import (
	"context"

	"go.uber.org/zap"

	"adms-gateway/internal/models"
)

// InsertRaw 写入一条原始请求审计记录，返回生成的 id
// 用 Prefer: return=representation 取回生成列（punch 行要回填 raw_id）
func (s *SupabaseStore) InsertRaw(ctx context.Context, rec *models.RawRecord) (string, error) {
	var inserted []struct {
		ID string `json:"id"`
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("select", "id").
		SetBody(rec).
		SetResult(&inserted).
		Post("/rest/v1/biometric_raw")

	if err := s.errFromResponse("insert_raw", resp, err); err != nil {
		s.logger.Error("Failed to insert raw audit record",
			zap.String("serial_no", rec.SerialNo),
			zap.Error(err),
		)
		return "", err
	}

	if len(inserted) == 0 {
		return "", nil
	}
	return inserted[0].ID, nil
}
