package models

import "encoding/json"

// Envelope is the wire frame for every websocket exchange.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventMessageSend     = "message:send"
	EventMessageRead     = "message:read"
	EventMessageTyping   = "message:typing"
	EventMessageReaction = "message:reaction"
	EventStatusCreate    = "status:create"
	EventUserStatus      = "user:status"
	EventCallIncoming    = "call:incoming"
	EventCallAnswer      = "call:answer"
	EventCallReject      = "call:reject"
	EventCallEnd         = "call:end"
	EventCallICE         = "call:ice-candidate"
	EventCallOffer       = "call:offer"
	EventCallWebRTC      = "call:webrtc-answer"
)

// Outbound event names.
const (
	EventUserConnect = "user:connect"
	EventUserOnline  = "user:online"
	EventUserOffline = "user:offline"
	EventMessageSent = "message:sent"
	EventError       = "error"
)

// SendMessageRequest is the payload of message:send.
type SendMessageRequest struct {
	ConversationID string      `json:"conversationId"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	MediaURL       string      `json:"mediaUrl,omitempty"`
	ReplyToID      string      `json:"replyToId,omitempty"`
}

// TypingEvent is the payload of message:typing, relayed without persistence.
type TypingEvent struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId,omitempty"`
	IsTyping       bool   `json:"isTyping"`
}

// ReadEvent is the payload of message:read.
type ReadEvent struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId,omitempty"`
}

// ReactionEvent is the payload of message:reaction.
type ReactionEvent struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId,omitempty"`
	Emoji     string `json:"emoji"`
}

// CreateStatusRequest is the payload of status:create.
type CreateStatusRequest struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

// UserStatusEvent is the payload of user:status.
type UserStatusEvent struct {
	UserID string `json:"userId,omitempty"`
	Status string `json:"status"`
}

// CallSignal carries call lifecycle and SDP/ICE payloads between exactly two
// parties. The relay fills FromUserID and forwards Payload verbatim.
type CallSignal struct {
	CallID     string          `json:"callId"`
	FromUserID string          `json:"fromUserId,omitempty"`
	ToUserID   string          `json:"toUserId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// CallEndEvent is the payload of call:end, fanned out to every listed
// participant except the caller.
type CallEndEvent struct {
	CallID       string   `json:"callId"`
	FromUserID   string   `json:"fromUserId,omitempty"`
	Participants []string `json:"participants"`
}

// PresenceEvent announces a user coming online or going offline.
type PresenceEvent struct {
	UserID   string `json:"userId"`
	Online   bool   `json:"online"`
	LastSeen string `json:"lastSeen,omitempty"`
}

// ErrorEvent is the single error surface of the realtime layer.
type ErrorEvent struct {
	Message string `json:"message"`
}
