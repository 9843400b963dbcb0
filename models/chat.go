package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a chat account. The realtime service only reads identity
// fields and writes the presence-related columns (online, last_seen, status).
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Username  string    `json:"username" gorm:"not null;uniqueIndex"`
	Avatar    string    `json:"avatar,omitempty"`
	Status    string    `json:"status,omitempty"`
	Online    bool      `json:"online" gorm:"default:false"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "chat.users"
}

// Conversation is a direct or group chat.
type Conversation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Type      string    `json:"type" gorm:"default:direct"` // direct, group
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string {
	return "chat.conversations"
}

// Participant grants a user send/receive rights in a conversation.
type Participant struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ConversationID uuid.UUID `json:"conversationId" gorm:"type:uuid;not null;uniqueIndex:idx_participants_conversation_user"`
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_participants_conversation_user"`
	JoinedAt       time.Time `json:"joinedAt"`
}

func (Participant) TableName() string {
	return "chat.participants"
}

// Contact is a directed entry in a user's contact list.
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_contacts_user_contact"`
	ContactID uuid.UUID `json:"contactId" gorm:"type:uuid;not null;uniqueIndex:idx_contacts_user_contact"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Contact) TableName() string {
	return "chat.contacts"
}

// Message is the durable copy of a chat message. The relay writes it once and
// moves the persisted record to online participants.
type Message struct {
	ID             uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	ConversationID uuid.UUID   `json:"conversationId" gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID   `json:"senderId" gorm:"type:uuid;not null"`
	Type           MessageType `json:"type" gorm:"default:text"`
	Content        string      `json:"content"`
	MediaURL       string      `json:"mediaUrl,omitempty"`
	ReplyToID      *uuid.UUID  `json:"replyToId,omitempty" gorm:"type:uuid"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func (Message) TableName() string {
	return "chat.messages"
}

// MessageRead records that a user has read a message. Upserted, one row per
// (message, user) pair.
type MessageRead struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	MessageID uuid.UUID `json:"messageId" gorm:"type:uuid;not null;uniqueIndex:idx_message_reads_message_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_message_reads_message_user"`
	ReadAt    time.Time `json:"readAt"`
}

func (MessageRead) TableName() string {
	return "chat.message_reads"
}

// Reaction holds a user's emoji reaction to a message. Upserted, one row per
// (message, user) pair; a second reaction replaces the emoji.
type Reaction struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	MessageID uuid.UUID `json:"messageId" gorm:"type:uuid;not null;uniqueIndex:idx_reactions_message_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_reactions_message_user"`
	Emoji     string    `json:"emoji" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Reaction) TableName() string {
	return "chat.reactions"
}

// Status is an ephemeral 24h story. Lives in Redis with a TTL, never in
// Postgres.
type Status struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"` // text, image, video
	Content   string    `json:"content"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Enums
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeAudio MessageType = "audio"
	MessageTypeFile  MessageType = "file"
)
