package mongodb

import (
	"context"
	"time"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetMessagesGroupedByConversation returns, per conversation, the sender and
// text of its messages matching query. Groups and the messages inside them
// come in store order.
func (r *messageRepo) GetMessagesGroupedByConversation(ctx context.Context, query models.GroupedQuery) ([]*models.ConversationMessages, error) {
	if len(query.ConversationIDs) == 0 {
		return []*models.ConversationMessages{}, nil
	}

	groups := []*models.ConversationMessages{}
	if err := r.Aggregate(ctx, groupedPipeline(query, r.location), &groups); err != nil {
		return nil, models.NewOperationError("get messages grouped by conversation", err,
			"conversation_ids", query.ConversationIDs)
	}
	return groups, nil
}

func groupedPipeline(query models.GroupedQuery, loc *time.Location) mongo.Pipeline {
	match := bson.M{
		"conversation_id": bson.M{"$in": query.ConversationIDs},
	}

	created := bson.M{}
	if query.StartDate != nil {
		created["$gte"] = startOfDay(*query.StartDate, loc)
	}
	if query.EndDate != nil {
		// inclusive end of day
		created["$lt"] = startOfDay(*query.EndDate, loc).AddDate(0, 0, 1)
	}
	if len(created) > 0 {
		match["created"] = created
	}

	if len(query.Tags) > 0 {
		match["tags.tag"] = bson.M{"$in": query.Tags}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": "$conversation_id",
			"messages": bson.M{"$push": bson.M{
				"sender_id": "$sender_id",
				"message":   "$text",
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"conversation_id": "$_id",
			"messages":        1,
		}}},
	}
}

// startOfDay keeps the calendar date of t as written and places midnight of
// that date in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
