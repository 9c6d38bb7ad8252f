package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"adms-gateway/internal/models"
)

// GetDeviceBySerial 按序列号精确查询设备目录
// 序列号唯一，最多一行；未注册和停用的设备同样返回 (nil, nil)，
// 只有存储/网络失败才返回 error——调用方据此区分"查不到"和"查不了"
func (s *SupabaseStore) GetDeviceBySerial(ctx context.Context, sn string) (*models.Device, error) {
	if sn == "" {
		return nil, nil
	}

	var devices []models.Device
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("serial_no", "eq."+sn).
		SetQueryParam("select", "id,tenant_id,serial_no,device_timezone,is_active").
		SetQueryParam("limit", "1").
		SetResult(&devices).
		Get("/rest/v1/biometric_devices")

	if err := s.errFromResponse("get_device", resp, err); err != nil {
		s.logger.Error("Failed to resolve device by serial",
			zap.String("serial_no", sn),
			zap.Error(err),
		)
		return nil, err
	}

	if len(devices) == 0 {
		return nil, nil
	}
	device := &devices[0]
	if !device.IsActive {
		// 停用设备与未注册设备同等对待
		return nil, nil
	}
	return device, nil
}

// TouchLastSeen 更新设备心跳时间（best-effort，失败只记日志）
// 并发请求可能竞争写同一字段，last write wins——该字段仅作参考
func (s *SupabaseStore) TouchLastSeen(ctx context.Context, deviceID string, now time.Time) error {
	if deviceID == "" {
		return nil
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+deviceID).
		SetHeader("Prefer", "return=minimal").
		SetBody(map[string]string{"last_seen_at": now.UTC().Format(time.RFC3339)}).
		Patch("/rest/v1/biometric_devices")

	if err := s.errFromResponse("touch_last_seen", resp, err); err != nil {
		s.logger.Warn("Failed to update device last_seen_at",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
