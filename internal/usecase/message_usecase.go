package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/nguyentranbao-ct/message-core/internal/kafka"
	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/nguyentranbao-ct/message-core/internal/repo/mongodb"
)

type messageUsecase struct {
	messageRepo mongodb.MessageRepository
	publisher   kafka.Publisher
}

func NewMessageUsecase(
	messageRepo mongodb.MessageRepository,
	publisher kafka.Publisher,
) MessageUsecase {
	return &messageUsecase{
		messageRepo: messageRepo,
		publisher:   publisher,
	}
}

func (uc *messageUsecase) CreateMessage(ctx context.Context, params models.CreateMessageParams, senderID string) (*models.MessageView, error) {
	if err := required("conversation_id", params.ConversationID, "sender_id", senderID); err != nil {
		return nil, err
	}

	message, err := uc.messageRepo.Create(ctx, params, senderID)
	if err != nil {
		return nil, err
	}

	log.Infow(ctx, "Message created",
		"message_id", message.ID,
		"conversation_id", message.ConversationID,
		"sender_id", senderID,
		"has_poll", message.RichContent != nil && message.RichContent.Poll != nil)
	uc.publish(ctx, models.EventMessageCreated, message, senderID, nil)
	return message.View(), nil
}

func (uc *messageUsecase) GetMessage(ctx context.Context, id models.ObjectID) (*models.MessageView, error) {
	message, err := uc.messageRepo.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return message.View(), nil
}

func (uc *messageUsecase) GetMessages(ctx context.Context, ids []models.ObjectID) ([]*models.MessageView, error) {
	messages, err := uc.messageRepo.GetMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	return models.ViewMessages(messages), nil
}

func (uc *messageUsecase) DeleteMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error) {
	return uc.mutate(ctx, models.EventMessageDeleted, userID, nil, func() (*models.Message, error) {
		return uc.messageRepo.Delete(ctx, id)
	})
}

func (uc *messageUsecase) ResolveMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error) {
	return uc.mutate(ctx, models.EventMessageResolved, userID, nil, func() (*models.Message, error) {
		return uc.messageRepo.Resolve(ctx, id)
	})
}

func (uc *messageUsecase) UnresolveMessage(ctx context.Context, id models.ObjectID, userID string) (*models.MessageView, error) {
	return uc.mutate(ctx, models.EventMessageUnresolved, userID, nil, func() (*models.Message, error) {
		return uc.messageRepo.Unresolve(ctx, id)
	})
}

func (uc *messageUsecase) GetConversationMessages(ctx context.Context, params ConversationMessagesParams) (*models.MessagePageView, error) {
	if err := required("conversation_id", params.ConversationID); err != nil {
		return nil, err
	}

	page, err := uc.messageRepo.GetConversationMessages(ctx, params.ConversationID, params.Limit, params.OffsetID)
	if err != nil {
		return nil, err
	}
	return page.View(), nil
}

func (uc *messageUsecase) GetMessagesGroupedByConversation(ctx context.Context, query models.GroupedQuery) ([]*models.ConversationMessages, error) {
	if query.StartDate != nil && query.EndDate != nil && calendarDay(*query.EndDate).Before(calendarDay(*query.StartDate)) {
		return nil, fmt.Errorf("%w: end date before start date", models.ErrInvalidArgument)
	}
	return uc.messageRepo.GetMessagesGroupedByConversation(ctx, query)
}

func (uc *messageUsecase) FindMessagesByTags(ctx context.Context, tags []string) ([]*models.MessageView, error) {
	messages, err := uc.messageRepo.FindMessagesByTags(ctx, tags)
	if err != nil {
		return nil, err
	}
	return models.ViewMessages(messages), nil
}

func (uc *messageUsecase) Like(ctx context.Context, messageID models.ObjectID, userID string) (*models.MessageView, error) {
	if err := required("user_id", userID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, models.EventMessageLiked, userID, nil, func() (*models.Message, error) {
		return uc.messageRepo.Like(ctx, userID, messageID)
	})
}

func (uc *messageUsecase) Unlike(ctx context.Context, messageID models.ObjectID, userID string) (*models.MessageView, error) {
	if err := required("user_id", userID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, models.EventMessageUnliked, userID, nil, func() (*models.Message, error) {
		return uc.messageRepo.Unlike(ctx, userID, messageID)
	})
}

func (uc *messageUsecase) AddTag(ctx context.Context, params AddTagParams) (*models.MessageView, error) {
	if err := required("user_id", params.UserID, "tag", params.Tag); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, models.EventTagAdded, params.UserID, map[string]any{"tag": params.Tag}, func() (*models.Message, error) {
		return uc.messageRepo.AddTag(ctx, params.Tag, params.UserID, params.MessageID, params.TagID)
	})
}

func (uc *messageUsecase) UpdateTag(ctx context.Context, params UpdateTagParams) (*models.MessageView, error) {
	if err := required("user_id", params.UserID, "tag", params.Tag); err != nil {
		return nil, err
	}
	data := map[string]any{"tag": params.Tag, "tag_id": params.TagID.String()}
	return uc.mutate(ctx, models.EventTagUpdated, params.UserID, data, func() (*models.Message, error) {
		return uc.messageRepo.UpdateTag(ctx, params.Tag, params.UserID, params.MessageID, params.TagID)
	})
}

func (uc *messageUsecase) AddReaction(ctx context.Context, params ReactionParams) (*models.MessageView, error) {
	if err := required("user_id", params.UserID, "reaction", params.Reaction); err != nil {
		return nil, err
	}
	data := map[string]any{"reaction": params.Reaction, "reaction_unicode": params.ReactionUnicode}
	return uc.mutate(ctx, models.EventReactionAdded, params.UserID, data, func() (*models.Message, error) {
		return uc.messageRepo.AddReaction(ctx, params.Reaction, params.UserID, params.ReactionUnicode, params.MessageID)
	})
}

func (uc *messageUsecase) RemoveReaction(ctx context.Context, params ReactionParams) (*models.MessageView, error) {
	if err := required("user_id", params.UserID, "reaction", params.Reaction); err != nil {
		return nil, err
	}
	data := map[string]any{"reaction": params.Reaction}
	return uc.mutate(ctx, models.EventReactionRemoved, params.UserID, data, func() (*models.Message, error) {
		return uc.messageRepo.RemoveReaction(ctx, params.Reaction, params.UserID, params.MessageID)
	})
}

func (uc *messageUsecase) AddVote(ctx context.Context, params VoteParams) (*models.MessageView, error) {
	if err := required("user_id", params.UserID, "option", params.Option); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, models.EventVoteAdded, params.UserID, map[string]any{"option": params.Option}, func() (*models.Message, error) {
		return uc.messageRepo.AddVote(ctx, params.MessageID, params.UserID, params.Option)
	})
}

func (uc *messageUsecase) RemoveVote(ctx context.Context, params VoteParams) (*models.MessageView, error) {
	if err := required("user_id", params.UserID, "option", params.Option); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, models.EventVoteRemoved, params.UserID, map[string]any{"option": params.Option}, func() (*models.Message, error) {
		return uc.messageRepo.RemoveVote(ctx, params.MessageID, params.UserID, params.Option)
	})
}

// mutate runs a repository mutation and announces it once the store accepted
// it. Set mutations are idempotent, so an accepted mutation may leave the
// message unchanged (a repeated like) and is announced all the same.
func (uc *messageUsecase) mutate(
	ctx context.Context,
	eventType models.MessageEventType,
	userID string,
	data map[string]any,
	apply func() (*models.Message, error),
) (*models.MessageView, error) {
	message, err := apply()
	if err != nil {
		log.Warnw(ctx, "Message mutation rejected",
			"event", eventType,
			"user_id", userID,
			"request_id", models.RequestIDFromContext(ctx),
			"error", err)
		return nil, err
	}
	uc.publish(ctx, eventType, message, userID, data)
	return message.View(), nil
}

// publish is best effort: the mutation is already stored.
func (uc *messageUsecase) publish(ctx context.Context, eventType models.MessageEventType, message *models.Message, userID string, data map[string]any) {
	event := models.NewMessageEvent(eventType, message, userID, data)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		log.Errorw(ctx, "Failed to publish message event",
			"event", eventType,
			"message_id", message.ID,
			"request_id", models.RequestIDFromContext(ctx),
			"error", err)
	}
}

// calendarDay drops the clock so dates compare the way the grouped view
// filters them, by whole days as written.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// required takes name/value pairs and rejects blank values.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s is required", models.ErrInvalidArgument, pairs[i])
		}
	}
	return nil
}
