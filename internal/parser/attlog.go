package parser

import (
	"strings"

	"adms-gateway/internal/models"
)

// ParseAttlog 解析设备推送的 ATTLOG 正文（按行、tab 分隔）
// 行格式：user_id \t check_time \t status \t verify_type
// 不足 2 个字段或第二个字段含 "FID=" 的行（固件混入的协议控制行）
// 按原因标记丢弃，绝不报错——不同固件输出差异很大，宽松是刻意的
func ParseAttlog(body string) []models.LineOutcome {
	var outcomes []models.LineOutcome

	for _, line := range splitLines(body) {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			outcomes = append(outcomes, models.LineOutcome{Line: line, Reason: models.DropShortLine})
			continue
		}
		if strings.Contains(parts[1], "FID=") {
			outcomes = append(outcomes, models.LineOutcome{Line: line, Reason: models.DropControlLine})
			continue
		}

		event := &models.AttendanceEvent{
			UserCode:   parts[0],
			CheckTime:  parts[1],
			Status:     "0",
			VerifyType: "0",
		}
		if len(parts) > 2 {
			event.Status = parts[2]
		}
		if len(parts) > 3 {
			event.VerifyType = parts[3]
		}

		outcomes = append(outcomes, models.LineOutcome{Line: line, Event: event})
	}

	return outcomes
}

// Events 提取保留下来的考勤事件
func Events(outcomes []models.LineOutcome) []models.AttendanceEvent {
	var events []models.AttendanceEvent
	for _, o := range outcomes {
		if o.Event != nil {
			events = append(events, *o.Event)
		}
	}
	return events
}

// splitLines 按 \r\n 或 \n 切行，跳过空行
func splitLines(body string) []string {
	raw := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	var lines []string
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
