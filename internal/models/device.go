package models

// Device 生物识别考勤终端目录条目（attendance.biometric_devices 表）
// 由后台管理端维护，本网关只读（仅更新 last_seen_at 心跳）
type Device struct {
	ID             string  `json:"id"`
	TenantID       string  `json:"tenant_id"`
	SerialNo       string  `json:"serial_no"`
	DeviceTimezone *string `json:"device_timezone"` // IANA 时区名，可空
	IsActive       bool    `json:"is_active"`
}

// Timezone 返回设备时区，未配置时回退到 def
func (d *Device) Timezone(def string) string {
	if d != nil && d.DeviceTimezone != nil && *d.DeviceTimezone != "" {
		return *d.DeviceTimezone
	}
	return def
}
