package mongodb

import (
	"context"
	"fmt"
	"slices"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetConversationMessages returns the newest limit messages of the
// conversation that are strictly older than offsetID (when given), ordered
// oldest first. Ids are assigned in creation order, so the oldest id of a
// page is the cursor for the page before it.
func (r *messageRepo) GetConversationMessages(ctx context.Context, conversationID string, limit int, offsetID *models.ObjectID) (*models.MessagePage, error) {
	const op = "get conversation messages"
	if limit < 0 {
		return nil, models.NewOperationError(op,
			fmt.Errorf("%w: negative limit %d", models.ErrInvalidArgument, limit),
			"conversation_id", conversationID)
	}
	if limit == 0 {
		limit = r.defaultLimit
	}
	limit = min(limit, r.maxLimit)
	if offsetID != nil {
		if err := checkIDs(op, *offsetID); err != nil {
			return nil, err
		}
	}

	filter, opts := conversationPageQuery(conversationID, limit, offsetID)
	messages, err := r.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewOperationError(op, err, "conversation_id", conversationID)
	}
	return pageWindow(messages, limit), nil
}

func conversationPageQuery(conversationID string, limit int, offsetID *models.ObjectID) (bson.M, *options.FindOptions) {
	limit = min(limit, models.MaxPageSize)
	filter := bson.M{"conversation_id": conversationID}
	if offsetID != nil {
		filter["_id"] = bson.M{"$lt": *offsetID}
	}

	// one extra document tells whether an older page exists
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit) + 1)
	return filter, opts
}

// pageWindow turns newest-first query results into an oldest-first page.
func pageWindow(newestFirst []*models.Message, limit int) *models.MessagePage {
	page := &models.MessagePage{}
	if len(newestFirst) > limit {
		newestFirst = newestFirst[:limit]
		page.HasMore = true
	}
	page.Messages = slices.Clone(newestFirst)
	slices.Reverse(page.Messages)
	if page.Messages == nil {
		page.Messages = []*models.Message{}
	}
	return page
}
