package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KVStore 抽象的 KV 存储（用于在单元测试中替换 Redis）
type KVStore interface {
	IncrBy(ctx context.Context, key string, value int64) error
	Set(ctx context.Context, key string, value string) error
}

// RedisKVStore 基于 go-redis 的 KV 实现
type RedisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

func (r *RedisKVStore) IncrBy(ctx context.Context, key string, value int64) error {
	return r.client.IncrBy(ctx, key, value).Err()
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// IngestStats 按设备序列号累计摄取计数（best-effort 运维统计）
// 失败只记日志，绝不影响协议应答；kv 为 nil 时整体禁用
type IngestStats struct {
	kv     KVStore
	logger *zap.Logger
}

func NewIngestStats(kv KVStore, logger *zap.Logger) *IngestStats {
	return &IngestStats{kv: kv, logger: logger}
}

// RecordPush 记录一次 ATTLOG 推送及其产出的打卡行数
func (s *IngestStats) RecordPush(ctx context.Context, sn string, punches int, now time.Time) {
	if s == nil || s.kv == nil || sn == "" {
		return
	}

	if err := s.kv.IncrBy(ctx, statsKey(sn, "pushes"), 1); err != nil {
		s.logger.Warn("Failed to update push counter", zap.String("serial_no", sn), zap.Error(err))
		return
	}
	if punches > 0 {
		if err := s.kv.IncrBy(ctx, statsKey(sn, "punches"), int64(punches)); err != nil {
			s.logger.Warn("Failed to update punch counter", zap.String("serial_no", sn), zap.Error(err))
		}
	}
	if err := s.kv.Set(ctx, statsKey(sn, "last_push_at"), now.UTC().Format(time.RFC3339)); err != nil {
		s.logger.Warn("Failed to update last push timestamp", zap.String("serial_no", sn), zap.Error(err))
	}
}

func statsKey(sn, suffix string) string {
	return fmt.Sprintf("adms:stats:%s:%s", sn, suffix)
}
