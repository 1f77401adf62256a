package websocket

import (
	"time"

	"github.com/askwhyharsh/arlocations/internal/scene"
	"github.com/askwhyharsh/arlocations/internal/session"
)

const (
	// device -> server
	MessageTypeAuthorization = "authorization"
	MessageTypeLocation      = "location"
	MessageTypeFrame         = "frame"
	MessageTypePause         = "pause"
	MessageTypeResume        = "resume"
	MessageTypePing          = "ping"

	// server -> device
	MessageTypeInfoShow = "info_show"
	MessageTypeInfoHide = "info_hide"
	MessageTypeNodes    = "nodes"
	MessageTypePong     = "pong"
	MessageTypeError    = "error"
)

type Message struct {
	Type      string              `json:"type"`
	Content   string              `json:"content,omitempty"`
	Nodes     []session.NodeState `json:"nodes,omitempty"`
	Timestamp int64               `json:"timestamp"`
	ErrorCode string              `json:"code,omitempty"`
}

type IncomingMessage struct {
	Type      string        `json:"type"`
	Status    string        `json:"status,omitempty"`
	Lat       *float64      `json:"lat,omitempty"`
	Lon       *float64      `json:"lon,omitempty"`
	Heading   *float64      `json:"heading,omitempty"`
	Camera    *scene.Camera `json:"camera,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

func NewInfoShowMessage(content string) *Message {
	return &Message{
		Type:      MessageTypeInfoShow,
		Content:   content,
		Timestamp: time.Now().Unix(),
	}
}

func NewInfoHideMessage() *Message {
	return &Message{
		Type:      MessageTypeInfoHide,
		Timestamp: time.Now().Unix(),
	}
}

func NewNodesMessage(nodes []session.NodeState) *Message {
	return &Message{
		Type:      MessageTypeNodes,
		Nodes:     nodes,
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(errMsg, code string) *Message {
	return &Message{
		Type:      MessageTypeError,
		Content:   errMsg,
		ErrorCode: code,
		Timestamp: time.Now().Unix(),
	}
}
