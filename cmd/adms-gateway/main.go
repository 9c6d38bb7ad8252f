package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"adms-gateway/internal/config"
	httpapi "adms-gateway/internal/http"
	"adms-gateway/internal/logger"
	"adms-gateway/internal/repository"
	"adms-gateway/internal/service"
)

func main() {
	// 本地开发时从 .env 读配置；生产环境直接用进程环境变量
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "adms-gateway")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
		log.Fatal("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}

	store := repository.NewSupabaseStore(&cfg.Supabase, log)

	// 摄取统计（可选）：Redis 不可用时直接禁用，不阻塞启动
	var redisClient *redis.Client
	var kv service.KVStore
	if cfg.Stats.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, ingest stats disabled", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			kv = service.NewRedisKVStore(redisClient)
		}
	}
	stats := service.NewIngestStats(kv, log)

	// 摄取事件发布（可选，默认禁用）
	var publisher service.EventPublisher
	var mqttPublisher *service.MQTTPublisher
	if cfg.MQTT.Enabled {
		p, err := service.NewMQTTPublisher(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT unavailable, punch events disabled", zap.Error(err))
		} else {
			mqttPublisher = p
			publisher = p
		}
	}

	ingestor := service.NewIngestor(cfg, store, stats, publisher, log)

	router := httpapi.NewRouter(log)
	router.RegisterIClockRoutes(httpapi.NewIClockHandler(cfg, ingestor, log))
	router.RegisterHealthRoutes(httpapi.NewHealthHandler())

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)

	if mqttPublisher != nil {
		mqttPublisher.Disconnect()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
