package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterIClockRoutes 注册 iClock/ADMS 设备协议路由
func (r *Router) RegisterIClockRoutes(h *IClockHandler) {
	// 心跳：设备轮询是否有待下发命令
	r.Handle("/iclock/getrequest", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetRequest(w, req)
	})

	// 握手 + 数据推送
	r.Handle("/iclock/cdata", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.CDataHandshake(w, req)
		case http.MethodPost:
			h.CDataPush(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterHealthRoutes 注册存活探针（不属于摄取核心）
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/health", h.Health)
}
