package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/message-core/internal/config"
	"github.com/nguyentranbao-ct/message-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

type MessageRepository interface {
	Create(ctx context.Context, params models.CreateMessageParams, senderID string) (*models.Message, error)
	GetMessage(ctx context.Context, id models.ObjectID) (*models.Message, error)
	GetMessages(ctx context.Context, ids []models.ObjectID) ([]*models.Message, error)
	UpdateProperty(ctx context.Context, id models.ObjectID, updates ...Update) (*models.Message, error)
	Delete(ctx context.Context, id models.ObjectID) (*models.Message, error)
	Resolve(ctx context.Context, id models.ObjectID) (*models.Message, error)
	Unresolve(ctx context.Context, id models.ObjectID) (*models.Message, error)

	GetConversationMessages(ctx context.Context, conversationID string, limit int, offsetID *models.ObjectID) (*models.MessagePage, error)

	Like(ctx context.Context, userID string, messageID models.ObjectID) (*models.Message, error)
	Unlike(ctx context.Context, userID string, messageID models.ObjectID) (*models.Message, error)
	AddTag(ctx context.Context, tag, userID string, messageID models.ObjectID, tagID *models.ObjectID) (*models.Message, error)
	UpdateTag(ctx context.Context, tag, userID string, messageID, tagID models.ObjectID) (*models.Message, error)
	FindMessagesByTags(ctx context.Context, tags []string) ([]*models.Message, error)
	AddReaction(ctx context.Context, reaction, userID, reactionUnicode string, messageID models.ObjectID) (*models.Message, error)
	RemoveReaction(ctx context.Context, reaction, userID string, messageID models.ObjectID) (*models.Message, error)
	AddVote(ctx context.Context, messageID models.ObjectID, userID, option string) (*models.Message, error)
	RemoveVote(ctx context.Context, messageID models.ObjectID, userID, option string) (*models.Message, error)

	GetMessagesGroupedByConversation(ctx context.Context, query models.GroupedQuery) ([]*models.ConversationMessages, error)
}

type messageRepo struct {
	baseRepo[models.Message]
	defaultLimit int
	maxLimit     int
	batchSize    int
	location     *time.Location
	now          func() time.Time
}

func NewMessageRepository(db *DB, conf *config.Config) MessageRepository {
	return newMessageRepo(db, conf.Message)
}

func newMessageRepo(db *DB, conf config.MessageConfig) *messageRepo {
	defaultLimit := conf.DefaultPageSize
	if defaultLimit <= 0 {
		defaultLimit = models.DefaultPageSize
	}
	maxLimit := conf.MaxPageSize
	if maxLimit <= 0 || maxLimit > models.MaxPageSize {
		maxLimit = models.MaxPageSize
	}
	defaultLimit = min(defaultLimit, maxLimit)
	return &messageRepo{
		baseRepo:     newBaseRepo[models.Message](db.Database),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		batchSize:    conf.LookupBatchSize,
		location:     conf.Location(),
		now:          time.Now,
	}
}

func (r *messageRepo) Create(ctx context.Context, params models.CreateMessageParams, senderID string) (*models.Message, error) {
	// the store keeps millisecond precision
	now := r.now().UTC().Truncate(time.Millisecond)
	message := models.NewMessage(params, senderID, now)

	id, err := r.Insert(ctx, message)
	if err != nil {
		return nil, models.NewOperationError("create message", err,
			"conversation_id", params.ConversationID, "sender_id", senderID)
	}
	message.ID = id
	return message, nil
}

func (r *messageRepo) GetMessage(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	const op = "get message"
	if err := checkIDs(op, id); err != nil {
		return nil, err
	}

	message, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, models.NewOperationError(op, err, "message_id", id)
	}
	return message, nil
}

// GetMessages returns the messages found for ids, in no particular order.
// Large id sets are looked up in concurrent batches.
func (r *messageRepo) GetMessages(ctx context.Context, ids []models.ObjectID) ([]*models.Message, error) {
	const op = "get messages"
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []*models.Message{}, nil
	}
	if err := checkIDs(op, ids...); err != nil {
		return nil, err
	}

	batchSize := r.batchSize
	if batchSize <= 0 {
		batchSize = len(ids)
	}

	var (
		mu       sync.Mutex
		messages = make([]*models.Message, 0, len(ids))
	)
	group, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += batchSize {
		batch := ids[start:min(start+batchSize, len(ids))]
		group.Go(func() error {
			found, err := r.Find(gctx, bson.M{"_id": bson.M{"$in": batch}})
			if err != nil {
				return err
			}
			mu.Lock()
			messages = append(messages, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, models.NewOperationError(op, err, "count", len(ids))
	}
	return messages, nil
}

// UpdateProperty applies updates to the message in one conditional write and
// returns the message as stored afterwards.
func (r *messageRepo) UpdateProperty(ctx context.Context, id models.ObjectID, updates ...Update) (*models.Message, error) {
	const op = "update property"
	if err := checkIDs(op, id); err != nil {
		return nil, err
	}

	update, err := buildUpdate(updates...)
	if err != nil {
		return nil, models.NewOperationError(op, err, "message_id", id)
	}
	return r.updateOne(ctx, op, bson.M{"_id": id}, update, "message_id", id)
}

// Delete marks the message as deleted. It never clears the flag.
func (r *messageRepo) Delete(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return r.UpdateProperty(ctx, id, Set("deleted", true))
}

func (r *messageRepo) Resolve(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return r.UpdateProperty(ctx, id, Set("resolved", true))
}

func (r *messageRepo) Unresolve(ctx context.Context, id models.ObjectID) (*models.Message, error) {
	return r.UpdateProperty(ctx, id, Set("resolved", false))
}

// updateOne runs a conditional update. Zero matched documents is reported as
// ErrUpdateFailed: the message is missing or the filter's precondition failed.
func (r *messageRepo) updateOne(ctx context.Context, op string, filter, update bson.M, ids ...any) (*models.Message, error) {
	message, err := r.FindOneAndUpdate(ctx, filter, update)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewOperationError(op, models.ErrUpdateFailed, ids...)
	}
	if err != nil {
		return nil, models.NewOperationError(op, err, ids...)
	}
	return message, nil
}

func checkIDs(op string, ids ...models.ObjectID) error {
	for _, id := range ids {
		if _, err := models.ParseObjectID(id.String()); err != nil {
			return models.NewOperationError(op, fmt.Errorf("%w: malformed id %q", models.ErrInvalidArgument, id))
		}
	}
	return nil
}

func uniqueIDs(ids []models.ObjectID) []models.ObjectID {
	seen := make(map[models.ObjectID]struct{}, len(ids))
	out := make([]models.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
