package mongodb

import (
	"context"
	"errors"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Likes, reaction user ids and poll votes are sets stored as arrays. Every
// change is expressed with $addToSet/$pull inside a conditional write so
// concurrent callers never read the array and write it back.

func (r *messageRepo) Like(ctx context.Context, userID string, messageID models.ObjectID) (*models.Message, error) {
	const op = "like"
	if err := checkIDs(op, messageID); err != nil {
		return nil, err
	}
	return r.updateOne(ctx, op,
		bson.M{"_id": messageID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
		"message_id", messageID, "user_id", userID)
}

func (r *messageRepo) Unlike(ctx context.Context, userID string, messageID models.ObjectID) (*models.Message, error) {
	const op = "unlike"
	if err := checkIDs(op, messageID); err != nil {
		return nil, err
	}
	return r.updateOne(ctx, op,
		bson.M{"_id": messageID},
		bson.M{"$pull": bson.M{"likes": userID}},
		"message_id", messageID, "user_id", userID)
}

// AddTag appends a tag to a message. Only the sender of the message may tag
// it; a caller-supplied tag id must not already be present on the message.
func (r *messageRepo) AddTag(ctx context.Context, tag, userID string, messageID models.ObjectID, tagID *models.ObjectID) (*models.Message, error) {
	const op = "add tag"
	id := models.NewObjectID()
	if tagID != nil {
		id = *tagID
	}
	if err := checkIDs(op, messageID, id); err != nil {
		return nil, err
	}

	filter, update := addTagQuery(tag, userID, messageID, id)
	return r.updateOne(ctx, op, filter, update,
		"message_id", messageID, "user_id", userID, "tag_id", id)
}

func addTagQuery(tag, userID string, messageID, tagID models.ObjectID) (bson.M, bson.M) {
	filter := bson.M{
		"_id":       messageID,
		"sender_id": userID,
		"tags.id":   bson.M{"$ne": tagID},
	}
	update := bson.M{
		"$push": bson.M{"tags": models.Tag{ID: tagID, Tag: tag}},
	}
	return filter, update
}

// UpdateTag renames the tag identified by tagID; the id is kept.
func (r *messageRepo) UpdateTag(ctx context.Context, tag, userID string, messageID, tagID models.ObjectID) (*models.Message, error) {
	const op = "update tag"
	if err := checkIDs(op, messageID, tagID); err != nil {
		return nil, err
	}
	return r.updateOne(ctx, op,
		bson.M{"_id": messageID, "tags.id": tagID},
		bson.M{"$set": bson.M{"tags.$.tag": tag}},
		"message_id", messageID, "user_id", userID, "tag_id", tagID)
}

// FindMessagesByTags returns messages carrying at least one of tags.
func (r *messageRepo) FindMessagesByTags(ctx context.Context, tags []string) ([]*models.Message, error) {
	if len(tags) == 0 {
		return []*models.Message{}, nil
	}
	messages, err := r.Find(ctx, bson.M{"tags.tag": bson.M{"$in": tags}})
	if err != nil {
		return nil, models.NewOperationError("find messages by tags", err, "tags", tags)
	}
	return messages, nil
}

// AddReaction adds userID to the entry for reaction, creating the entry when
// the message has none. The writes run as one ordered batch:
//
//  1. add the user to an existing entry
//  2. push a new entry when no entry exists
//  3. add the user to an existing entry again
//
// For any state of the message exactly one of 1 and 2 matches. Step 3 covers
// a concurrent caller pushing the entry between 1 and 2, which would
// otherwise make 2 miss and drop the user.
func (r *messageRepo) AddReaction(ctx context.Context, reaction, userID, reactionUnicode string, messageID models.ObjectID) (*models.Message, error) {
	const op = "add reaction"
	if err := checkIDs(op, messageID); err != nil {
		return nil, err
	}
	return r.bulkUpdate(ctx, op, messageID, addReactionWrites(reaction, userID, reactionUnicode, messageID),
		"message_id", messageID, "user_id", userID, "reaction", reaction)
}

func addReactionWrites(reaction, userID, reactionUnicode string, messageID models.ObjectID) []mongo.WriteModel {
	addToExisting := mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": messageID, "reactions.reaction": reaction}).
		SetUpdate(bson.M{"$addToSet": bson.M{"reactions.$.user_ids": userID}})

	pushNew := mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": messageID, "reactions.reaction": bson.M{"$ne": reaction}}).
		SetUpdate(bson.M{"$push": bson.M{"reactions": models.Reaction{
			Reaction:        reaction,
			ReactionUnicode: reactionUnicode,
			UserIDs:         []string{userID},
		}}})

	return []mongo.WriteModel{addToExisting, pushNew, addToExisting}
}

// RemoveReaction removes userID from the entry for reaction and drops the
// entry once nobody is left in it, as one ordered batch:
//
//  1. pull the user out of the entry
//  2. pull the entry if its user set is empty
//
// Known race: an AddReaction by another user that runs its first write
// after step 2 removed the entry and its second write before, sees the
// entry in neither state and loses that user. Callers that need strict
// membership re-read the message.
func (r *messageRepo) RemoveReaction(ctx context.Context, reaction, userID string, messageID models.ObjectID) (*models.Message, error) {
	const op = "remove reaction"
	if err := checkIDs(op, messageID); err != nil {
		return nil, err
	}
	return r.bulkUpdate(ctx, op, messageID, removeReactionWrites(reaction, userID, messageID),
		"message_id", messageID, "user_id", userID, "reaction", reaction)
}

func removeReactionWrites(reaction, userID string, messageID models.ObjectID) []mongo.WriteModel {
	pullUser := mongo.NewUpdateOneModel().
		SetFilter(bson.M{
			"_id":       messageID,
			"reactions": bson.M{"$elemMatch": bson.M{"reaction": reaction, "user_ids": userID}},
		}).
		SetUpdate(bson.M{"$pull": bson.M{"reactions.$.user_ids": userID}})

	// matches whenever the message exists, so the batch reports a missing
	// message as zero matches
	pullEmpty := mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": messageID}).
		SetUpdate(bson.M{"$pull": bson.M{"reactions": bson.M{
			"reaction": reaction,
			"user_ids": bson.M{"$size": 0},
		}}})

	return []mongo.WriteModel{pullUser, pullEmpty}
}

// AddVote adds userID to the votes of the poll option labelled option.
// Voting for several options is allowed.
func (r *messageRepo) AddVote(ctx context.Context, messageID models.ObjectID, userID, option string) (*models.Message, error) {
	const op = "add vote"
	if err := checkIDs(op, messageID); err != nil {
		return nil, err
	}
	filter, update := voteQuery("$addToSet", messageID, userID, option)
	return r.updateOne(ctx, op, filter, update,
		"message_id", messageID, "user_id", userID, "option", option)
}

func (r *messageRepo) RemoveVote(ctx context.Context, messageID models.ObjectID, userID, option string) (*models.Message, error) {
	const op = "remove vote"
	if err := checkIDs(op, messageID); err != nil {
		return nil, err
	}
	filter, update := voteQuery("$pull", messageID, userID, option)
	return r.updateOne(ctx, op, filter, update,
		"message_id", messageID, "user_id", userID, "option", option)
}

func voteQuery(operator string, messageID models.ObjectID, userID, option string) (bson.M, bson.M) {
	filter := bson.M{
		"_id":                              messageID,
		"rich_content.poll.options.option": option,
	}
	update := bson.M{
		operator: bson.M{"rich_content.poll.options.$.votes": userID},
	}
	return filter, update
}

// bulkUpdate runs an ordered batch against a single message and returns the
// message as stored afterwards. A batch that matched nothing means the
// message does not exist.
func (r *messageRepo) bulkUpdate(ctx context.Context, op string, messageID models.ObjectID, writes []mongo.WriteModel, ids ...any) (*models.Message, error) {
	result, err := r.BulkWrite(ctx, writes)
	if err != nil {
		return nil, models.NewOperationError(op, err, ids...)
	}
	if result.MatchedCount == 0 {
		return nil, models.NewOperationError(op, models.ErrUpdateFailed, ids...)
	}

	message, err := r.FindByID(ctx, messageID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewOperationError(op, models.ErrUpdateFailed, ids...)
	}
	if err != nil {
		return nil, models.NewOperationError(op, err, ids...)
	}
	return message, nil
}
