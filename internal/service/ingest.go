package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"adms-gateway/internal/config"
	"adms-gateway/internal/models"
	"adms-gateway/internal/parser"
)

// Store 摄取管线用到的后端存储操作
// 由 repository.SupabaseStore 实现；单元测试用内存 fake 替换
type Store interface {
	GetDeviceBySerial(ctx context.Context, sn string) (*models.Device, error)
	InsertRaw(ctx context.Context, rec *models.RawRecord) (string, error)
	InsertPunches(ctx context.Context, punches []models.Punch) error
	TouchLastSeen(ctx context.Context, deviceID string, now time.Time) error
}

// PushRequest 一次设备数据推送（由 HTTP 层组装）
type PushRequest struct {
	SN      string
	Table   string
	Path    string
	Query   string          // 序列化后的 query 参数
	Headers json.RawMessage // 序列化后的请求头（含 _client_ip / _request_id）
	Body    string
}

// PushOutcome 管线的终止原因（对设备不可见，应答始终 "OK"）
type PushOutcome string

const (
	OutcomeOK            PushOutcome = "ok"
	OutcomeOperlog       PushOutcome = "operlog"        // OPERLOG 表：直接应答，不写存储
	OutcomeResolverError PushOutcome = "resolver_error" // 设备查询失败：只审计，不产 punch
	OutcomeNoTenant      PushOutcome = "no_tenant"      // 租户闸门拦截：只审计
)

// PushResult 管线执行结果（用于日志和测试断言）
type PushResult struct {
	Outcome       PushOutcome
	RawID         string
	LinesDropped  int
	PunchesBuilt  int
	PunchesStored bool
}

// Ingestor ATTLOG 摄取管线
// 顺序：设备解析 → 无条件审计 → 租户闸门 → 解析 → 归一化过滤 →
// 批量入库 → 心跳更新。存储失败一律降级为"记日志、继续"，
// 设备协议没有错误通道，除超限外任何内部失败都不改变应答
type Ingestor struct {
	config    *config.Config
	store     Store
	stats     *IngestStats
	publisher EventPublisher
	logger    *zap.Logger
}

// NewIngestor 创建摄取管线
func NewIngestor(cfg *config.Config, store Store, stats *IngestStats, publisher EventPublisher, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		config:    cfg,
		store:     store,
		stats:     stats,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessPush 处理一次 POST /iclock/cdata 推送（超限检查已在 HTTP 层完成）
func (s *Ingestor) ProcessPush(ctx context.Context, req *PushRequest) *PushResult {
	res := &PushResult{Outcome: OutcomeOK}

	// OPERLOG（设备操作日志）明确不落库，直接应答
	if strings.EqualFold(req.Table, "OPERLOG") {
		res.Outcome = OutcomeOperlog
		return res
	}

	// 1. 设备解析：未注册/停用 → nil；存储失败 → err（两者路径不同）
	device, resolveErr := s.store.GetDeviceBySerial(ctx, req.SN)

	// 2. 无条件审计：设备解析结果如何都尝试写 raw，失败降级为无 id
	rec := &models.RawRecord{
		TenantID: AuditTenant(device, &s.config.Ingest),
		SerialNo: req.SN,
		Path:     req.Path,
		Query:    req.Query,
		Headers:  req.Headers,
		Body:     req.Body,
	}
	if device != nil {
		id := device.ID
		rec.DeviceID = &id
	}
	rawID, rawErr := s.store.InsertRaw(ctx, rec)
	if rawErr == nil && rawID != "" {
		res.RawID = rawID
	}

	// 设备查询都失败说明存储不稳，跳过租户解析和 punch 物化
	if resolveErr != nil {
		s.logger.Warn("Device resolution failed, skipping punch processing",
			zap.String("serial_no", req.SN),
			zap.Error(resolveErr),
		)
		res.Outcome = OutcomeResolverError
		return res
	}

	// 3. 租户闸门：无租户就无法产 punch（tenant_id NOT NULL）
	tenantID, ok := ResolveTenant(device, &s.config.Ingest)
	if !ok {
		s.logger.Warn("No tenant resolvable, raw audit only",
			zap.String("serial_no", req.SN),
			zap.Bool("device_known", device != nil),
		)
		res.Outcome = OutcomeNoTenant
		return res
	}

	// 4. 解析 + 归一化过滤
	pctx := PunchContext{
		TenantID: tenantID,
		SerialNo: req.SN,
		Table:    req.Table,
		Timezone: device.Timezone(s.config.Ingest.DeviceTimezone),
	}
	if device != nil {
		id := device.ID
		pctx.DeviceID = &id
	}
	if res.RawID != "" {
		id := res.RawID
		pctx.RawID = &id
	}

	outcomes := parser.ParseAttlog(req.Body)
	punches, outcomes := MaterializePunches(outcomes, pctx)

	for _, o := range outcomes {
		if o.Reason != models.DropNone {
			res.LinesDropped++
			s.logger.Debug("Dropped attendance line",
				zap.String("serial_no", req.SN),
				zap.String("reason", string(o.Reason)),
				zap.String("line", o.Line),
			)
		}
	}
	res.PunchesBuilt = len(punches)

	// 5. 批量入库（best-effort：失败记日志，不改变应答）
	if len(punches) > 0 {
		if err := s.store.InsertPunches(ctx, punches); err == nil {
			res.PunchesStored = true
			if s.publisher != nil {
				event := &PunchEvent{
					SerialNo:   req.SN,
					TenantID:   tenantID,
					Count:      len(punches),
					RawID:      res.RawID,
					IngestedAt: time.Now().UTC(),
				}
				if device != nil {
					event.DeviceID = device.ID
				}
				s.publisher.PublishPunchEvent(event)
			}
		}
	}

	// 6. 心跳更新（best-effort，仅已解析设备）
	if device != nil {
		_ = s.store.TouchLastSeen(ctx, device.ID, time.Now())
	}

	s.stats.RecordPush(ctx, req.SN, res.PunchesBuilt, time.Now())

	s.logger.Info("Processed attendance push",
		zap.String("serial_no", req.SN),
		zap.String("table", req.Table),
		zap.Int("punches", res.PunchesBuilt),
		zap.Int("dropped", res.LinesDropped),
		zap.Bool("stored", res.PunchesStored),
	)
	return res
}
