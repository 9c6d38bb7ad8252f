package repository

import (
	"context"

	"go.uber.org/zap"

	"adms-gateway/internal/models"
)

// InsertPunches 批量写入打卡记录（单次 POST 一个 JSON 数组）
// 原子性只到 HTTP 调用为止：存储端部分失败会整批报错，
// 本层不做逐行重试或部分成功处理
func (s *SupabaseStore) InsertPunches(ctx context.Context, punches []models.Punch) error {
	if len(punches) == 0 {
		return nil
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(punches).
		Post("/rest/v1/punches")

	if err := s.errFromResponse("insert_punches", resp, err); err != nil {
		s.logger.Error("Failed to insert punch batch",
			zap.Int("count", len(punches)),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("Inserted punch batch",
		zap.Int("count", len(punches)),
	)
	return nil
}
