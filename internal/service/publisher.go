package service

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"adms-gateway/internal/config"
)

// PunchEvent 批量入库成功后向下游广播的摄取事件
// 下游消费者（员工解析、去重）据此拉取新数据；本层不保证送达
type PunchEvent struct {
	SerialNo   string    `json:"serial_no"`
	TenantID   string    `json:"tenant_id"`
	DeviceID   string    `json:"device_id,omitempty"`
	RawID      string    `json:"raw_id,omitempty"`
	Count      int       `json:"count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// EventPublisher 摄取事件发布接口（nil 安全：未启用时为 nil）
type EventPublisher interface {
	PublishPunchEvent(event *PunchEvent)
}

// MQTTPublisher 基于 MQTT 的事件发布器（best-effort）
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewMQTTPublisher 连接 broker 并创建发布器
func NewMQTTPublisher(cfg *config.MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{
		client: client,
		topic:  cfg.Topic,
		logger: logger,
	}, nil
}

// PublishPunchEvent 发布摄取事件（失败只记日志）
func (p *MQTTPublisher) PublishPunchEvent(event *PunchEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("Failed to marshal punch event", zap.Error(err))
		return
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		p.logger.Warn("Failed to publish punch event",
			zap.String("topic", p.topic),
			zap.String("serial_no", event.SerialNo),
			zap.Error(token.Error()),
		)
	}
}

// Disconnect 断开 MQTT 连接
func (p *MQTTPublisher) Disconnect() {
	p.client.Disconnect(250) // 250ms等待时间
}
