package chat

import (
	chatRepo "medibook/database/repository/chat"
	userRepo "medibook/database/repository/user"
	"medibook/models"
	"medibook/services/notification"
)

// ChatService defines business logic for patient/admin support messaging.
type ChatService interface {
	// SendMessage persists a message and notifies the receiver in real time.
	SendMessage(senderID, receiverID, body string) (*models.ChatMessage, error)
	// GetConversation retrieves the full ordered history between two users.
	GetConversation(userA, userB string) ([]models.ChatMessage, error)
	// ListConversations summarizes the requester's conversations. Admins see
	// one entry per patient who has messaged them; patients see one entry per
	// admin in the system.
	ListConversations(requesterID string, requesterRole models.Role) ([]models.Conversation, error)
	// MarkRead flags all messages from senderID to receiverID as read.
	// Idempotent; a no-op when nothing matches.
	MarkRead(receiverID, senderID string) error
}

// DefaultChatService is the production implementation.
type DefaultChatService struct {
	Repo      chatRepo.ChatRepository
	UserRepo  userRepo.UserRepository
	Publisher notification.Publisher
}
