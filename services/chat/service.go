package chat

import (
	"fmt"
	"strings"
	"time"

	"medibook/models"
	"medibook/services/notification"
	"medibook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendMessage persists a trimmed message and notifies the receiver.
func (s *DefaultChatService) SendMessage(senderID, receiverID, body string) (*models.ChatMessage, error) {
	receiver, err := s.UserRepo.GetByID(receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, utils.NotFoundError("User not found")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.InvalidArgumentError("message cannot be empty")
	}

	sender, err := s.UserRepo.GetByID(senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, utils.NotFoundError("User not found")
	}

	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    body,
		IsRead:     false,
		Timestamp:  time.Now(),
	}
	if err := s.Repo.Create(msg); err != nil {
		utils.GetLogger().Error("SendMessage: failed to persist message", zap.Error(err))
		return nil, err
	}

	msg.Sender = sender.Ref()
	msg.Receiver = receiver.Ref()

	// Mutation is committed; delivery is best effort to connected sessions.
	s.Publisher.PublishToUser(receiverID, notification.Event{
		Type:    notification.EventNewMessage,
		Message: fmt.Sprintf("New message from %s", sender.Name),
		Data:    msg,
	})

	return msg, nil
}

// GetConversation retrieves the full ordered history between two users.
func (s *DefaultChatService) GetConversation(userA, userB string) ([]models.ChatMessage, error) {
	messages, err := s.Repo.GetConversation(userA, userB)
	if err != nil {
		return nil, err
	}
	s.resolveParticipants(messages, userA, userB)
	return messages, nil
}

// ListConversations summarizes the requester's conversations.
//
// The two branches are deliberately asymmetric: an admin's list is derived
// from patients who have actually messaged them, while a patient's list
// always offers every admin as a counterparty.
func (s *DefaultChatService) ListConversations(requesterID string, requesterRole models.Role) ([]models.Conversation, error) {
	var counterparties []models.User

	switch requesterRole {
	case models.RoleAdmin:
		senderIDs, err := s.Repo.DistinctSenders(requesterID)
		if err != nil {
			return nil, err
		}
		if len(senderIDs) == 0 {
			return []models.Conversation{}, nil
		}
		users, err := s.UserRepo.GetByIDs(senderIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.Role == models.RolePatient {
				counterparties = append(counterparties, u)
			}
		}
	case models.RolePatient:
		admins, err := s.UserRepo.GetByRole(models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		counterparties = admins
	default:
		return nil, utils.ForbiddenError("unknown role")
	}

	conversations := make([]models.Conversation, 0, len(counterparties))
	for i := range counterparties {
		cp := counterparties[i]

		last, err := s.Repo.GetLastMessage(cp.ID, requesterID)
		if err != nil {
			return nil, err
		}
		unread, err := s.Repo.CountUnread(cp.ID, requesterID)
		if err != nil {
			return nil, err
		}

		conversations = append(conversations, models.Conversation{
			User:        cp.Ref(),
			LastMessage: last,
			UnreadCount: unread,
		})
	}
	return conversations, nil
}

// MarkRead flags all messages from senderID to receiverID as read.
func (s *DefaultChatService) MarkRead(receiverID, senderID string) error {
	_, err := s.Repo.MarkRead(senderID, receiverID)
	return err
}

// resolveParticipants attaches sender/receiver identity to each message of a
// two-party conversation.
func (s *DefaultChatService) resolveParticipants(messages []models.ChatMessage, userA, userB string) {
	if len(messages) == 0 {
		return
	}

	users, err := s.UserRepo.GetByIDs([]string{userA, userB})
	if err != nil {
		utils.GetLogger().Warn("Failed to resolve conversation participants", zap.Error(err))
		return
	}
	refs := make(map[string]*models.UserRef, len(users))
	for i := range users {
		refs[users[i].ID] = users[i].Ref()
	}

	for i := range messages {
		messages[i].Sender = refs[messages[i].SenderID]
		messages[i].Receiver = refs[messages[i].ReceiverID]
	}
}
