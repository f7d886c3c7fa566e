// Package mqtt provides MQTT client connectivity for Prism Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Prism uses MQTT as the channel to the lighting hardware service. The
// hardware side publishes device snapshots and per-frame colour updates;
// Core publishes scope commands (effect, brightness, segments) back.
//
//	Prism Core ↔ MQTT Broker ↔ Hardware Service
//
// # Security Considerations
//
//   - TLS is required for non-loopback deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Frame topics run at effect frame rate (30-60 Hz per device)
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to colour frames from every device
//	topics := mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}
//	err = client.Subscribe(topics.AllDeviceFrames(), 0,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s (%d bytes)", topic, len(payload))
//	        return nil
//	    })
//
//	// Publish a scope command
//	client.Publish(topics.DeviceCommand("COM3"), cmdJSON, 1, false)
package mqtt
