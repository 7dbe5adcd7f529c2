package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/nguyentranbao-ct/message-core/internal/usecase"
)

type mockMessageUsecase struct {
	mock.Mock
}

var _ usecase.MessageUsecase = (*mockMessageUsecase)(nil)

func view(args mock.Arguments) (*models.MessageView, error) {
	v, _ := args.Get(0).(*models.MessageView)
	return v, args.Error(1)
}

func views(args mock.Arguments) ([]*models.MessageView, error) {
	v, _ := args.Get(0).([]*models.MessageView)
	return v, args.Error(1)
}

func (m *mockMessageUsecase) CreateMessage(ctx context.Context, params models.CreateMessageParams, senderID string) (*models.MessageView, error) {
	return view(m.Called(ctx, params, senderID))
}

func (m *mockMessageUsecase) GetMessage(ctx context.Context, id models.ObjectID) (*models.MessageView, error) {
	return view(m.Called(ctx, id))
}

func (m *mockMessageUsecase) GetMessages(ctx context.Context, ids []models.ObjectID) ([]*models.MessageView, error) {
	return views(m.Called(ctx, ids))
}

func (m *mockMessageUsecase) DeleteMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error) {
	return view(m.Called(ctx, id, userID))
}

func (m *mockMessageUsecase) ResolveMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error) {
	return view(m.Called(ctx, id, userID))
}

func (m *mockMessageUsecase) UnresolveMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error) {
	return view(m.Called(ctx, id, userID))
}

func (m *mockMessageUsecase) GetConversationMessages(ctx context.Context, params usecase.ConversationMessagesParams) (*models.MessagePageView, error) {
	args := m.Called(ctx, params)
	page, _ := args.Get(0).(*models.MessagePageView)
	return page, args.Error(1)
}

func (m *mockMessageUsecase) GetMessagesGroupedByConversation(ctx context.Context, query models.GroupedQuery) ([]*models.ConversationMessages, error) {
	args := m.Called(ctx, query)
	grouped, _ := args.Get(0).([]*models.ConversationMessages)
	return grouped, args.Error(1)
}

func (m *mockMessageUsecase) FindMessagesByTags(ctx context.Context, tags []string) ([]*models.MessageView, error) {
	return views(m.Called(ctx, tags))
}

func (m *mockMessageUsecase) Like(ctx context.Context, messageID models.ObjectID, userID string) (*models.MessageView, error) {
	return view(m.Called(ctx, messageID, userID))
}

func (m *mockMessageUsecase) Unlike(ctx context.Context, messageID models.ObjectID, userID string) (*models.MessageView, error) {
	return view(m.Called(ctx, messageID, userID))
}

func (m *mockMessageUsecase) AddTag(ctx context.Context, params usecase.AddTagParams) (*models.MessageView, error) {
	return view(m.Called(ctx, params))
}

func (m *mockMessageUsecase) UpdateTag(ctx context.Context, params usecase.UpdateTagParams) (*models.MessageView, error) {
	return view(m.Called(ctx, params))
}

func (m *mockMessageUsecase) AddReaction(ctx context.Context, params usecase.ReactionParams) (*models.MessageView, error) {
	return view(m.Called(ctx, params))
}

func (m *mockMessageUsecase) RemoveReaction(ctx context.Context, params usecase.ReactionParams) (*models.MessageView, error) {
	return view(m.Called(ctx, params))
}

func (m *mockMessageUsecase) AddVote(ctx context.Context, params usecase.VoteParams) (*models.MessageView, error) {
	return view(m.Called(ctx, params))
}

func (m *mockMessageUsecase) RemoveVote(ctx context.Context, params usecase.VoteParams) (*models.MessageView, error) {
	return view(m.Called(ctx, params))
}
