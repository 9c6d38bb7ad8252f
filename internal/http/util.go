package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// plainText 设备协议应答固定 text/plain
func plainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// queryParam 取 query 参数，兼容固件大小写差异（SN / sn / Sn）
func queryParam(values url.Values, key string) string {
	if v := values.Get(key); v != "" {
		return v
	}
	if v := values.Get(strings.ToLower(key)); v != "" {
		return v
	}
	return values.Get(strings.ToUpper(key))
}

// serializeQuery query 参数序列化为 JSON 文本（审计用）
func serializeQuery(values url.Values) string {
	m := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			m[k] = v[0]
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// serializeHeaders 请求头序列化为 JSONB，附加解析出的客户端 IP 和请求 id
func serializeHeaders(h http.Header, clientIP, requestID string) json.RawMessage {
	m := make(map[string]string, len(h)+2)
	for k, v := range h {
		m[k] = strings.Join(v, ", ")
	}
	m["_client_ip"] = clientIP
	m["_request_id"] = requestID

	b, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}

// clientIP 解析客户端 IP；只有配置信任代理时才看 X-Forwarded-For
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
