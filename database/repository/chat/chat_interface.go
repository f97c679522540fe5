package chatRepo

import "medibook/models"

// ChatRepository defines methods for chat message data access.
type ChatRepository interface {
	// Create inserts a new chat message record.
	Create(message *models.ChatMessage) error
	// GetConversation retrieves every message exchanged between the two users
	// in either direction, ordered by timestamp ascending.
	GetConversation(userA, userB string) ([]models.ChatMessage, error)
	// GetLastMessage retrieves the most recent message between the two users,
	// or nil when they have never exchanged one.
	GetLastMessage(userA, userB string) (*models.ChatMessage, error)
	// CountUnread counts unread messages sent by senderID to receiverID.
	CountUnread(senderID, receiverID string) (int64, error)
	// DistinctSenders lists the IDs of every user who has ever sent a message
	// to receiverID.
	DistinctSenders(receiverID string) ([]string, error)
	// MarkRead flips the read flag on every unread message from senderID to
	// receiverID and returns how many were flipped. Idempotent.
	MarkRead(senderID, receiverID string) (int64, error)
}
