// Package protocol defines the phone-to-host UDP text protocol and the JSON
// envelope used on the status WebSocket.
package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeStatus carries a periodic status report from the receiver
	TypeStatus MessageType = "status"

	// TypeSettings is sent when sensitivity or smoothing changed at runtime
	TypeSettings MessageType = "settings"

	// TypePing can be used for application-level heartbeats if needed
	TypePing MessageType = "ping"

	// TypePong answers TypePing
	TypePong MessageType = "pong"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// SettingsPayload is the payload for TypeSettings
type SettingsPayload struct {
	Sensitivity     float64 `json:"sensitivity"`
	SmoothingFactor float64 `json:"smoothing_factor"`
}
