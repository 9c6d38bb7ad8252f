package models

import "encoding/json"

// RawRecord 原始请求审计记录（attendance.biometric_raw 表）
// 每个被接受的 ATTLOG POST 写一条，只追加，永不更新
type RawRecord struct {
	TenantID *string         `json:"tenant_id"` // 可空：未解析设备时为 null
	DeviceID *string         `json:"device_id"` // 可空
	SerialNo string          `json:"serial_no"`
	Path     string          `json:"path"`
	Query    string          `json:"query"`   // 序列化后的 query 参数
	Headers  json.RawMessage `json:"headers"` // JSONB NOT NULL（含 _client_ip / _request_id）
	Body     string          `json:"body"`
}
