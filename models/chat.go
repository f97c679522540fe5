package models

import "time"

// ChatMessage is a direct message between a patient and an administrator.
// Messages are immutable except for the read flag, which only flips false→true.
type ChatMessage struct {
	ID         string    `bson:"id" json:"id"`
	SenderID   string    `bson:"senderId" json:"senderId"`
	ReceiverID string    `bson:"receiverId" json:"receiverId"`
	Message    string    `bson:"message" json:"message"`
	IsRead     bool      `bson:"isRead" json:"isRead"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`

	// Resolved identities for display; not stored.
	Sender   *UserRef `bson:"-" json:"sender,omitempty"`
	Receiver *UserRef `bson:"-" json:"receiver,omitempty"`
}

// Conversation summarizes the message history with one counterparty.
type Conversation struct {
	User        *UserRef     `json:"user"`
	LastMessage *ChatMessage `json:"lastMessage"`
	UnreadCount int64        `json:"unreadCount"`
}
