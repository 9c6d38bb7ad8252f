package service

import (
	"adms-gateway/internal/config"
	"adms-gateway/internal/models"
)

// ResolveTenant 租户闸门：决定本次推送能否继续物化打卡记录
// 纯函数，不触发任何 IO；结果为 false 时上游仍然应答 "OK"，
// 只是不再产生 punch 行（存储端强制 tenant_id 非空）
func ResolveTenant(device *models.Device, cfg *config.IngestConfig) (string, bool) {
	if device != nil && device.TenantID != "" {
		return device.TenantID, true
	}
	if cfg.RejectUnknownSN {
		return "", false
	}
	if cfg.DefaultTenantID != "" {
		return cfg.DefaultTenantID, true
	}
	return "", false
}

// AuditTenant 审计记录要落的租户：能解析就用设备租户，
// 否则用兜底租户，都没有就留空（审计表 tenant_id 可空）
func AuditTenant(device *models.Device, cfg *config.IngestConfig) *string {
	if device != nil && device.TenantID != "" {
		t := device.TenantID
		return &t
	}
	if cfg.DefaultTenantID != "" {
		t := cfg.DefaultTenantID
		return &t
	}
	return nil
}
