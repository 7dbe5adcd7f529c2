package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/nguyentranbao-ct/message-core/internal/repo/mongodb"
	"github.com/stretchr/testify/mock"
)

type mockMessageRepo struct {
	mock.Mock
}

var _ mongodb.MessageRepository = (*mockMessageRepo)(nil)

func (m *mockMessageRepo) message(args mock.Arguments) (*models.Message, error) {
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockMessageRepo) messages(args mock.Arguments) ([]*models.Message, error) {
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Error(1)
}

func (m *mockMessageRepo) Create(ctx context.Context, params models.CreateMessageParams, senderID string) (*models.Message, error) {
	return m.message(m.Called(ctx, params, senderID))
}

func (m *mockMessageRepo) GetMessage(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, id))
}

func (m *mockMessageRepo) GetMessages(ctx context.Context, ids []models.ObjectID) ([]*models.Message, error) {
	return m.messages(m.Called(ctx, ids))
}

func (m *mockMessageRepo) UpdateProperty(ctx context.Context, id models.ObjectID, updates ...mongodb.Update) (*models.Message, error) {
	return m.message(m.Called(ctx, id, updates))
}

func (m *mockMessageRepo) Delete(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, id))
}

func (m *mockMessageRepo) Resolve(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, id))
}

func (m *mockMessageRepo) Unresolve(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, id))
}

func (m *mockMessageRepo) GetConversationMessages(ctx context.Context, conversationID string, limit int, offsetID *models.ObjectID) (*models.MessagePage, error) {
	args := m.Called(ctx, conversationID, limit, offsetID)
	page, _ := args.Get(0).(*models.MessagePage)
	return page, args.Error(1)
}

func (m *mockMessageRepo) Like(ctx context.Context, userID string, messageID models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, userID, messageID))
}

func (m *mockMessageRepo) Unlike(ctx context.Context, userID string, messageID models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, userID, messageID))
}

func (m *mockMessageRepo) AddTag(ctx context.Context, tag, userID string, messageID models.ObjectID, tagID *models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, tag, userID, messageID, tagID))
}

func (m *mockMessageRepo) UpdateTag(ctx context.Context, tag, userID string, messageID, tagID models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, tag, userID, messageID, tagID))
}

func (m *mockMessageRepo) FindMessagesByTags(ctx context.Context, tags []string) ([]*models.Message, error) {
	return m.messages(m.Called(ctx, tags))
}

func (m *mockMessageRepo) AddReaction(ctx context.Context, reaction, userID, reactionUnicode string, messageID models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, reaction, userID, reactionUnicode, messageID))
}

func (m *mockMessageRepo) RemoveReaction(ctx context.Context, reaction, userID string, messageID models.ObjectID) (*models.Message, error) {
	return m.message(m.Called(ctx, reaction, userID, messageID))
}

func (m *mockMessageRepo) AddVote(ctx context.Context, messageID models.ObjectID, userID, option string) (*models.Message, error) {
	return m.message(m.Called(ctx, messageID, userID, option))
}

func (m *mockMessageRepo) RemoveVote(ctx context.Context, messageID models.ObjectID, userID, option string) (*models.Message, error) {
	return m.message(m.Called(ctx, messageID, userID, option))
}

func (m *mockMessageRepo) GetMessagesGroupedByConversation(ctx context.Context, query models.GroupedQuery) ([]*models.ConversationMessages, error) {
	args := m.Called(ctx, query)
	groups, _ := args.Get(0).([]*models.ConversationMessages)
	return groups, args.Error(1)
}

type recordingPublisher struct {
	events []models.MessageEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.MessageEvent) error {
	p.events = append(p.events, event)
	return p.err
}
