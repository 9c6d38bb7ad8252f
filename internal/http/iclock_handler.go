package httpapi

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adms-gateway/internal/config"
	"adms-gateway/internal/service"
)

// optionsReply 握手固定应答（必须逐字节一致，设备按此校准推送行为）
// Stamp/OpStamp 固定 9999：本网关不维护真实的设备命令队列
const optionsReply = "GET OPTION FROM: 123456\n" +
	"Stamp=9999\n" +
	"OpStamp=9999\n" +
	"ErrorDelay=60\n" +
	"Delay=30\n" +
	"TransTimes=00:00;14:05\n" +
	"TransInterval=1\n" +
	"TransFlag=1111000000\n" +
	"Realtime=1\n" +
	"Encrypt=0"

// IClockHandler iClock/ADMS 设备协议处理器
type IClockHandler struct {
	config   *config.Config
	ingestor *service.Ingestor
	logger   *zap.Logger
}

func NewIClockHandler(cfg *config.Config, ingestor *service.Ingestor, logger *zap.Logger) *IClockHandler {
	return &IClockHandler{
		config:   cfg,
		ingestor: ingestor,
		logger:   logger,
	}
}

// GetRequest 心跳应答
// 设备每隔几秒就问一次，这里刻意不逐次记日志，避免刷屏
func (h *IClockHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	plainText(w, http.StatusOK, "OK")
}

// CDataHandshake GET /iclock/cdata：设备握手
// 带 options 参数时返回固定配置块，与设备身份无关
func (h *IClockHandler) CDataHandshake(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if _, ok := query["options"]; ok {
		h.logger.Info("Device handshake",
			zap.String("serial_no", queryParam(query, "SN")),
		)
		plainText(w, http.StatusOK, optionsReply)
		return
	}
	plainText(w, http.StatusOK, "OK")
}

// CDataPush POST /iclock/cdata：数据推送入口
// 超限是唯一对设备可见的失败；其余内部失败一律应答 "OK"，
// 非 OK 应答会触发设备端重传风暴甚至锁死
func (h *IClockHandler) CDataPush(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.config.Ingest.MaxBodyKB) * 1024

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		h.logger.Warn("Failed to read push body", zap.Error(err))
		plainText(w, http.StatusOK, "OK")
		return
	}
	if int64(len(body)) > maxBytes {
		h.logger.Warn("Push body exceeds size limit",
			zap.String("serial_no", queryParam(r.URL.Query(), "SN")),
			zap.Int64("limit_bytes", maxBytes),
		)
		plainText(w, http.StatusRequestEntityTooLarge, "Payload Too Large")
		return
	}

	query := r.URL.Query()
	requestID := uuid.NewString()
	req := &service.PushRequest{
		SN:      queryParam(query, "SN"),
		Table:   queryParam(query, "table"),
		Path:    r.URL.Path,
		Query:   serializeQuery(query),
		Headers: serializeHeaders(r.Header, clientIP(r, h.config.HTTP.TrustProxy), requestID),
		Body:    string(body),
	}

	res := h.ingestor.ProcessPush(r.Context(), req)

	h.logger.Debug("Push acknowledged",
		zap.String("request_id", requestID),
		zap.String("serial_no", req.SN),
		zap.String("outcome", string(res.Outcome)),
	)
	plainText(w, http.StatusOK, "OK")
}
