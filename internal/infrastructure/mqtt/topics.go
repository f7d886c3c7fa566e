package mqtt

import (
	"fmt"
	"strings"
)

// defaultTopicPrefix is used when a Topics value has no explicit prefix.
const defaultTopicPrefix = "prism"

// Topics provides builders for Prism MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
// The hardware service side of each topic:
//
//	topics := mqtt.Topics{Prefix: "prism"}
//	frameTopic := topics.DeviceFrame("COM3")
//	// Returns: "prism/device/COM3/frame"
type Topics struct {
	// Prefix is the root of the topic hierarchy (config mqtt.topic_prefix).
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return defaultTopicPrefix
	}
	return t.Prefix
}

// =============================================================================
// Hardware Service Topics
// =============================================================================

// DeviceFrame returns the topic carrying colour frames for one device.
// Payload: {"port": "...", "colors": [{"r":..,"g":..,"b":..}, ...]}
//
// Example: prism/device/COM3/frame
func (t Topics) DeviceFrame(port string) string {
	return fmt.Sprintf("%s/device/%s/frame", t.prefix(), port)
}

// DeviceCommand returns the topic for scope commands to one device.
//
// Example: prism/device/COM3/command
func (t Topics) DeviceCommand(port string) string {
	return fmt.Sprintf("%s/device/%s/command", t.prefix(), port)
}

// DevicesSnapshot returns the retained topic carrying the full device list.
// The hardware service republishes the complete snapshot after every scan.
//
// Example: prism/devices
func (t Topics) DevicesSnapshot() string {
	return fmt.Sprintf("%s/devices", t.prefix())
}

// ScanRequest returns the topic used to ask the hardware service to rescan.
//
// Example: prism/scan
func (t Topics) ScanRequest() string {
	return fmt.Sprintf("%s/scan", t.prefix())
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic (online/offline, LWT).
//
// Example: prism/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.prefix())
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllDeviceFrames returns a pattern matching colour frames from every device.
//
// Pattern: prism/device/+/frame
func (t Topics) AllDeviceFrames() string {
	return fmt.Sprintf("%s/device/+/frame", t.prefix())
}

// PortFromFrameTopic extracts the device port from a frame topic.
// Returns "" if the topic does not match the frame pattern.
func (t Topics) PortFromFrameTopic(topic string) string {
	want := t.prefix() + "/device/"
	rest, ok := strings.CutPrefix(topic, want)
	if !ok {
		return ""
	}
	port, ok := strings.CutSuffix(rest, "/frame")
	if !ok || port == "" || strings.Contains(port, "/") {
		return ""
	}
	return port
}
