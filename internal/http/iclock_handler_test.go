package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adms-gateway/internal/config"
	"adms-gateway/internal/models"
	"adms-gateway/internal/service"
)

// fakeStore 仅用于 handler 测试（记录所有存储调用）
type fakeStore struct {
	device     *models.Device
	resolveErr error
	rawID      string
	punchErr   error

	rawInserts   []*models.RawRecord
	punchBatches [][]models.Punch
	touched      []string
}

func (f *fakeStore) GetDeviceBySerial(ctx context.Context, sn string) (*models.Device, error) {
	return f.device, f.resolveErr
}

func (f *fakeStore) InsertRaw(ctx context.Context, rec *models.RawRecord) (string, error) {
	f.rawInserts = append(f.rawInserts, rec)
	return f.rawID, nil
}

func (f *fakeStore) InsertPunches(ctx context.Context, punches []models.Punch) error {
	f.punchBatches = append(f.punchBatches, punches)
	return f.punchErr
}

func (f *fakeStore) TouchLastSeen(ctx context.Context, deviceID string, now time.Time) error {
	f.touched = append(f.touched, deviceID)
	return nil
}

func newTestRouter(t *testing.T, cfg *config.Config, store *fakeStore) *Router {
	t.Helper()
	logger := zap.NewNop()
	ingestor := service.NewIngestor(cfg, store, service.NewIngestStats(nil, logger), nil, logger)

	router := NewRouter(logger)
	router.RegisterIClockRoutes(NewIClockHandler(cfg, ingestor, logger))
	router.RegisterHealthRoutes(NewHealthHandler())
	return router
}

func gatewayConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Ingest.DeviceTimezone = "America/Guayaquil"
	cfg.Ingest.RejectUnknownSN = true
	cfg.Ingest.MaxBodyKB = 256
	return cfg
}

func registeredDevice() *models.Device {
	tz := "America/Guayaquil"
	return &models.Device{
		ID:             "dev-1",
		TenantID:       "tenant-1",
		SerialNo:       "SN123",
		DeviceTimezone: &tz,
		IsActive:       true,
	}
}

func doRequest(router *Router, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetRequest_Heartbeat(t *testing.T) {
	router := newTestRouter(t, gatewayConfig(), &fakeStore{})

	rec := doRequest(router, http.MethodGet, "/iclock/getrequest?SN=SN123", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestGetRequest_PostNotAllowed(t *testing.T) {
	router := newTestRouter(t, gatewayConfig(), &fakeStore{})

	rec := doRequest(router, http.MethodPost, "/iclock/getrequest", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCDataHandshake_PlainGet(t *testing.T) {
	router := newTestRouter(t, gatewayConfig(), &fakeStore{})

	rec := doRequest(router, http.MethodGet, "/iclock/cdata?SN=SN123", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCDataHandshake_OptionsBlock(t *testing.T) {
	router := newTestRouter(t, gatewayConfig(), &fakeStore{})

	rec := doRequest(router, http.MethodGet, "/iclock/cdata?SN=SN123&options=all", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// 协议兼容性要求逐字节一致
	expected := "GET OPTION FROM: 123456\n" +
		"Stamp=9999\n" +
		"OpStamp=9999\n" +
		"ErrorDelay=60\n" +
		"Delay=30\n" +
		"TransTimes=00:00;14:05\n" +
		"TransInterval=1\n" +
		"TransFlag=1111000000\n" +
		"Realtime=1\n" +
		"Encrypt=0"
	assert.Equal(t, expected, rec.Body.String())
}

func TestCDataPush_OversizedBodyRejected(t *testing.T) {
	cfg := gatewayConfig()
	cfg.Ingest.MaxBodyKB = 1
	store := &fakeStore{device: registeredDevice()}
	router := newTestRouter(t, cfg, store)

	body := strings.Repeat("x", 2048)
	rec := doRequest(router, http.MethodPost, "/iclock/cdata?SN=SN123&table=ATTLOG", body)

	// 唯一对设备可见的失败；存储完全不被触碰
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, store.rawInserts)
	assert.Empty(t, store.punchBatches)
}

func TestCDataPush_OperlogAcksWithoutWrites(t *testing.T) {
	store := &fakeStore{device: registeredDevice()}
	router := newTestRouter(t, gatewayConfig(), store)

	rec := doRequest(router, http.MethodPost, "/iclock/cdata?SN=SN123&table=OPERLOG", "OPLOG\t1\t2024-01-15 08:30:00\n")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Empty(t, store.rawInserts)
	assert.Empty(t, store.punchBatches)
}

func TestCDataPush_UnknownSerialStillAcksOK(t *testing.T) {
	store := &fakeStore{device: nil, rawID: "raw-7"}
	router := newTestRouter(t, gatewayConfig(), store)

	rec := doRequest(router, http.MethodPost, "/iclock/cdata?SN=GHOST&table=ATTLOG", "1001\t2024-01-15 08:30:00\n")

	// 恰好一条审计记录、零条打卡、应答仍是 200 OK
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, store.rawInserts, 1)
	assert.Equal(t, "GHOST", store.rawInserts[0].SerialNo)
	assert.Empty(t, store.punchBatches)
}

func TestCDataPush_HappyPathIngests(t *testing.T) {
	store := &fakeStore{device: registeredDevice(), rawID: "raw-42"}
	router := newTestRouter(t, gatewayConfig(), store)

	rec := doRequest(router, http.MethodPost, "/iclock/cdata?SN=SN123&table=ATTLOG",
		"1001\t2024-01-15 08:30:00\t0\t1\n1002\t2024-01-15 08:31:00\t1\t15\n")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	require.Len(t, store.punchBatches, 1)
	batch := store.punchBatches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "tenant-1", batch[0].TenantID)
	assert.Equal(t, time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC), batch[0].PunchedAt)
	assert.Equal(t, []string{"dev-1"}, store.touched)
}

func TestCDataPush_AuditCarriesRequestContext(t *testing.T) {
	store := &fakeStore{device: registeredDevice(), rawID: "raw-42"}
	router := newTestRouter(t, gatewayConfig(), store)

	req := httptest.NewRequest(http.MethodPost, "/iclock/cdata?SN=SN123&table=ATTLOG",
		strings.NewReader("1001\t2024-01-15 08:30:00\n"))
	req.RemoteAddr = "192.0.2.7:52311"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Len(t, store.rawInserts, 1)
	raw := store.rawInserts[0]
	assert.Equal(t, "/iclock/cdata", raw.Path)
	assert.Contains(t, raw.Query, `"SN":"SN123"`)
	assert.Equal(t, "1001\t2024-01-15 08:30:00\n", raw.Body)

	var headers map[string]string
	require.NoError(t, json.Unmarshal(raw.Headers, &headers))
	assert.Equal(t, "192.0.2.7", headers["_client_ip"])
	assert.NotEmpty(t, headers["_request_id"])
}

func TestCDataPush_PunchInsertFailureMaskedFromDevice(t *testing.T) {
	store := &fakeStore{device: registeredDevice(), rawID: "raw-42", punchErr: errors.New("batch rejected")}
	router := newTestRouter(t, gatewayConfig(), store)

	rec := doRequest(router, http.MethodPost, "/iclock/cdata?SN=SN123&table=ATTLOG", "1001\t2024-01-15 08:30:00\n")

	// 存储失败只能通过日志观察，协议应答不变
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCDataPush_LowercaseQueryParams(t *testing.T) {
	store := &fakeStore{device: registeredDevice(), rawID: "raw-42"}
	router := newTestRouter(t, gatewayConfig(), store)

	rec := doRequest(router, http.MethodPost, "/iclock/cdata?sn=SN123&table=ATTLOG", "1001\t2024-01-15 08:30:00\n")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.rawInserts, 1)
	assert.Equal(t, "SN123", store.rawInserts[0].SerialNo)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, gatewayConfig(), &fakeStore{})

	rec := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, "adms-gateway", payload["service"])
}
