package chatRepo

import (
	"context"
	"fmt"
	"time"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoChatRepo implements ChatRepository using MongoDB.
type MongoChatRepo struct {
	coll *mongo.Collection
}

// NewMongoChatRepo creates a new instance of ChatRepository using MongoDB.
func NewMongoChatRepo() ChatRepository {
	repo := &MongoChatRepo{coll: database.Collection("chats")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoChatRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "timestamp", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// betweenFilter matches messages exchanged between the two users in either direction.
func betweenFilter(userA, userB string) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"senderId": userA, "receiverId": userB},
			bson.M{"senderId": userB, "receiverId": userA},
		},
	}
}

// Create inserts a new chat message document.
func (r *MongoChatRepo) Create(message *models.ChatMessage) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// GetConversation retrieves the full ordered history between two users.
func (r *MongoChatRepo) GetConversation(userA, userB string) ([]models.ChatMessage, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, betweenFilter(userA, userB), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	for cursor.Next(ctx) {
		var m models.ChatMessage
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// GetLastMessage retrieves the most recent message between two users.
func (r *MongoChatRepo) GetLastMessage(userA, userB string) (*models.ChatMessage, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var message models.ChatMessage
	if err := r.coll.FindOne(ctx, betweenFilter(userA, userB), opts).Decode(&message); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch last message: %w", err)
	}
	return &message, nil
}

// CountUnread counts unread messages from senderID to receiverID.
func (r *MongoChatRepo) CountUnread(senderID, receiverID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"senderId": senderID, "receiverId": receiverID, "isRead": false}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// DistinctSenders lists every user who has sent a message to receiverID.
func (r *MongoChatRepo) DistinctSenders(receiverID string) ([]string, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "senderId", bson.M{"receiverId": receiverID})
	if err != nil {
		return nil, fmt.Errorf("failed to list message senders: %w", err)
	}

	senders := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			senders = append(senders, s)
		}
	}
	return senders, nil
}

// MarkRead flips isRead on every unread message from senderID to receiverID.
func (r *MongoChatRepo) MarkRead(senderID, receiverID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"senderId": senderID, "receiverId": receiverID, "isRead": false}
	result, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return result.ModifiedCount, nil
}
