package models

// AttendanceEvent 解析后的单行考勤事件（瞬态，不直接落库）
type AttendanceEvent struct {
	UserCode   string // 设备端员工编号
	CheckTime  string // 原始打卡时间字符串
	Status     string // 缺省 "0"
	VerifyType string // 缺省 "0"
}

// DropReason 行被丢弃的内部原因
// 协议应答始终为 "OK"，原因仅用于日志和测试断言
type DropReason string

const (
	DropNone         DropReason = ""
	DropShortLine    DropReason = "short_line"    // 少于 2 个字段
	DropControlLine  DropReason = "control_line"  // 第二个字段含 FID=（协议控制行）
	DropEmptyCode    DropReason = "empty_code"    // 去空格后员工编号为空
	DropBadTimestamp DropReason = "bad_timestamp" // 两种时间解析路径均失败
)

// LineOutcome 单行解析结果（保留事件或带原因丢弃）
type LineOutcome struct {
	Line   string
	Event  *AttendanceEvent // Reason 非空时为 nil
	Reason DropReason
}
