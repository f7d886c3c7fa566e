package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/infrastructure/mqtt"
	"github.com/prismled/prism-core/internal/scope"
)

// framePayload is the wire shape published by the hardware service on
// the per-device frame topic.
type framePayload struct {
	Port   string        `json:"port"`
	Colors []scope.Color `json:"colors"`
}

// MQTTSource feeds the distributor from the hardware service's frame
// topics. It subscribes with a single-level wildcard so new devices
// stream without resubscribing.
type MQTTSource struct {
	client *mqtt.Client
	topics mqtt.Topics
	qos    byte
	logger *logging.Logger
}

// NewMQTTSource creates a frame source over an established MQTT client.
func NewMQTTSource(client *mqtt.Client, topics mqtt.Topics, qos byte, logger *logging.Logger) *MQTTSource {
	return &MQTTSource{
		client: client,
		topics: topics,
		qos:    qos,
		logger: logger.With("component", "frame_source"),
	}
}

// Listen subscribes to all device frame topics. Malformed payloads are
// logged and dropped; the subscription stays up. Unsubscription happens
// when the context is cancelled.
func (s *MQTTSource) Listen(ctx context.Context, deliver func(port string, colors []scope.Color)) error {
	topic := s.topics.AllDeviceFrames()
	err := s.client.Subscribe(topic, s.qos, func(msgTopic string, payload []byte) error {
		var frame framePayload
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.logger.Warn("dropping malformed frame", "topic", msgTopic, "error", err)
			return nil
		}
		port := frame.Port
		if port == "" {
			port = s.topics.PortFromFrameTopic(msgTopic)
		}
		if port == "" {
			s.logger.Warn("frame without a port", "topic", msgTopic)
			return nil
		}
		deliver(port, frame.Colors)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	context.AfterFunc(ctx, func() {
		if err := s.client.Unsubscribe(topic); err != nil {
			s.logger.Debug("frame unsubscribe failed", "error", err)
		}
	})
	return nil
}
