package config

import (
	"os"
	"strconv"
)

// Config adms-gateway（iClock/ADMS 接入网关）配置
// 进程启动时构造一次，之后只读
type Config struct {
	HTTP struct {
		Addr       string
		TrustProxy bool
	}
	Supabase SupabaseConfig
	Ingest   IngestConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Stats StatsConfig
	MQTT  MQTTConfig
	Log   struct {
		Level  string
		Format string
	}
}

// SupabaseConfig Supabase/PostgREST 后端存储配置
type SupabaseConfig struct {
	URL            string // Supabase 项目地址（如 https://xxx.supabase.co）
	ServiceKey     string // service role key（仅服务端使用）
	Schema         string // PostgREST profile（固定 attendance）
	TimeoutSeconds int    // 每次调用超时（秒），无重试
}

// IngestConfig 摄取策略配置
type IngestConfig struct {
	DeviceTimezone  string // 默认设备时区（IANA）
	RejectUnknownSN bool   // 未注册序列号是否拒绝入库
	DefaultTenantID string // 未解析设备时的兜底租户（可空）
	MaxBodyKB       int    // POST 最大请求体（KB）
}

// StatsConfig Redis 摄取统计配置（可选，best-effort）
type StatsConfig struct {
	Enabled bool
}

// MQTT 配置（用于向下游发布摄取事件，默认禁用）
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8081")
	cfg.HTTP.TrustProxy = parseBool(getEnv("TRUST_PROXY", "false"))

	cfg.Supabase.URL = getEnv("SUPABASE_URL", "")
	cfg.Supabase.ServiceKey = getEnv("SUPABASE_SERVICE_KEY", "")
	cfg.Supabase.Schema = getEnv("SUPABASE_SCHEMA", "attendance")
	cfg.Supabase.TimeoutSeconds = parseInt(getEnv("STORE_TIMEOUT_SECONDS", "10"), 10)

	cfg.Ingest.DeviceTimezone = getEnv("DEVICE_TIMEZONE", "America/Guayaquil")
	cfg.Ingest.RejectUnknownSN = parseBool(getEnv("REJECT_UNKNOWN_SN", "true"))
	cfg.Ingest.DefaultTenantID = getEnv("DEFAULT_TENANT_ID", "")
	cfg.Ingest.MaxBodyKB = parseInt(getEnv("MAX_BODY_KB", "256"), 256)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Stats.Enabled = parseBool(getEnv("STATS_ENABLED", "false"))

	cfg.MQTT.Enabled = parseBool(getEnv("MQTT_ENABLED", "false"))
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "adms-gateway")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "attendance/punches")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}
