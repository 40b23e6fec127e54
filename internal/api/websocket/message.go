package websocket

import "time"

// Message types exchanged over the notification socket
const (
	MessageTypeToast       = "toast"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage is sent by the browser
type ClientMessage struct {
	Type    string  `json:"type"`
	Payload *Filter `json:"payload,omitempty"`
}

// ServerMessage is pushed to the browser
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Filter limits which toast severities a client receives
type Filter struct {
	Severities []string `json:"severities,omitempty"`
}

// ErrorMessage describes a rejected client message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
