package models

import "time"

// PunchSourceBiometric 本网关产出的打卡行固定来源标记
const PunchSourceBiometric = "biometric"

// Punch 单条打卡记录（attendance.punches 表）
// 构造后不可变；employee_id 在本层恒为 null，由下游按 code 解析
type Punch struct {
	TenantID              string    `json:"tenant_id"`
	EmployeeID            *string   `json:"employee_id"` // 恒为 null
	BiometricEmployeeCode string    `json:"biometric_employee_code"`
	PunchedAt             time.Time `json:"punched_at"` // UTC
	Source                string    `json:"source"`
	DeviceID              *string   `json:"device_id"`
	SerialNo              *string   `json:"serial_no"`
	RawID                 *string   `json:"raw_id"` // 指向 biometric_raw.id（审计插入失败时为 null）
	Meta                  PunchMeta `json:"meta"`   // JSONB NOT NULL
}

// PunchMeta 保留设备原始字段，供取证回放和后续重新处理
type PunchMeta struct {
	SN           string `json:"sn"`
	Table        string `json:"table"`
	DeviceTz     string `json:"device_tz"`
	Status       string `json:"status"`
	VerifyType   string `json:"verify_type"`
	RawCheckTime string `json:"raw_check_time"`
}
