package service

import (
	"strings"

	"adms-gateway/internal/models"
	"adms-gateway/internal/parser"
)

// PunchContext 物化打卡行所需的设备上下文
type PunchContext struct {
	TenantID string
	DeviceID *string
	SerialNo string
	RawID    *string
	Table    string
	Timezone string // 生效的设备时区（设备未配置时已回退到默认值）
}

// MaterializePunches 把解析出的考勤事件物化为可落库的打卡行
// 每个事件：员工编号去空格且非空、时间戳归一化成功，二者缺一即
// 静默丢弃（数据质量过滤是刻意策略，原因记录在返回的 outcome 里）
// employee_id 恒为 null，由下游按 biometric_employee_code 解析
func MaterializePunches(outcomes []models.LineOutcome, pctx PunchContext) ([]models.Punch, []models.LineOutcome) {
	var punches []models.Punch
	result := make([]models.LineOutcome, 0, len(outcomes))

	for _, o := range outcomes {
		if o.Event == nil {
			result = append(result, o)
			continue
		}

		code := strings.TrimSpace(o.Event.UserCode)
		if code == "" {
			result = append(result, models.LineOutcome{Line: o.Line, Reason: models.DropEmptyCode})
			continue
		}

		punchedAt, err := parser.NormalizeTimestamp(o.Event.CheckTime, pctx.Timezone)
		if err != nil {
			result = append(result, models.LineOutcome{Line: o.Line, Reason: models.DropBadTimestamp})
			continue
		}

		sn := pctx.SerialNo
		punches = append(punches, models.Punch{
			TenantID:              pctx.TenantID,
			EmployeeID:            nil,
			BiometricEmployeeCode: code,
			PunchedAt:             punchedAt,
			Source:                models.PunchSourceBiometric,
			DeviceID:              pctx.DeviceID,
			SerialNo:              &sn,
			RawID:                 pctx.RawID,
			Meta: models.PunchMeta{
				SN:           pctx.SerialNo,
				Table:        pctx.Table,
				DeviceTz:     pctx.Timezone,
				Status:       o.Event.Status,
				VerifyType:   o.Event.VerifyType,
				RawCheckTime: o.Event.CheckTime,
			},
		})
		result = append(result, o)
	}

	return punches, result
}
