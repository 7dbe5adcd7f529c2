package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/message-core/internal/models"
)

type MessageUsecase interface {
	CreateMessage(ctx context.Context, params models.CreateMessageParams, senderID string) (*models.MessageView, error)
	GetMessage(ctx context.Context, id models.ObjectID) (*models.MessageView, error)
	GetMessages(ctx context.Context, ids []models.ObjectID) ([]*models.MessageView, error)
	DeleteMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error)
	ResolveMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error)
	UnresolveMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error)

	GetConversationMessages(ctx context.Context, params ConversationMessagesParams) (*models.MessagePageView, error)
	GetMessagesGroupedByConversation(ctx context.Context, query models.GroupedQuery) ([]*models.ConversationMessages, error)
	FindMessagesByTags(ctx context.Context, tags []string) ([]*models.MessageView, error)

	Like(ctx context.Context, messageID models.ObjectID, userID string) (*models.MessageView, error)
	Unlike(ctx context.Context, messageID models.ObjectID, userID string) (*models.MessageView, error)
	AddTag(ctx context.Context, params AddTagParams) (*models.MessageView, error)
	UpdateTag(ctx context.Context, params UpdateTagParams) (*models.MessageView, error)
	AddReaction(ctx context.Context, params ReactionParams) (*models.MessageView, error)
	RemoveReaction(ctx context.Context, params ReactionParams) (*models.MessageView, error)
	AddVote(ctx context.Context, params VoteParams) (*models.MessageView, error)
	RemoveVote(ctx context.Context, params VoteParams) (*models.MessageView, error)
}

type ConversationMessagesParams struct {
	ConversationID string
	Limit          int
	OffsetID       *models.ObjectID
}

type AddTagParams struct {
	MessageID models.ObjectID
	UserID    string
	Tag       string
	TagID     *models.ObjectID
}

type UpdateTagParams struct {
	MessageID models.ObjectID
	UserID    string
	TagID     models.ObjectID
	Tag       string
}

type ReactionParams struct {
	MessageID       models.ObjectID
	UserID          string
	Reaction        string
	ReactionUnicode string
}

type VoteParams struct {
	MessageID models.ObjectID
	UserID    string
	Option    string
}
