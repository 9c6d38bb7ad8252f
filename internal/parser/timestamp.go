package parser

import (
	"fmt"
	"strings"
	"time"
)

const wallClockLayout = "2006-01-02 15:04:05"

// NormalizeTimestamp 把设备本地的朴素时间字符串转换为 UTC 时刻
// 主路径："YYYY-MM-DD HH:MM:SS"（日期和时间之间允许空格或单个 'T'，
// 统一归一为空格），按 tzName 指定的 IANA 时区解释后转 UTC。
// 回退路径：带尾部 UTC 偏移（或 Z）的 RFC3339 解析；不带偏移的值
// 仍按 tzName 解释。两条路径都失败时返回错误，调用方必须丢弃该事件。
func NormalizeTimestamp(raw string, tzName string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tzName, err)
	}

	// 主路径：设备墙钟时间
	normalized := strings.Replace(s, "T", " ", 1)
	if t, err := time.ParseInLocation(wallClockLayout, normalized, loc); err == nil {
		return t.UTC(), nil
	}

	// 回退：带偏移（或 Z）的完整 ISO 串，个别固件会这样发
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
