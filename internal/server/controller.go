package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/message-core/internal/server/middleware"
	"github.com/nguyentranbao-ct/message-core/internal/usecase"
	"github.com/nguyentranbao-ct/message-core/pkg/util"
)

const dateLayout = "2006-01-02"

type Controller interface {
	Health(c echo.Context) error

	CreateMessage(c echo.Context, req CreateMessageRequest) (any, error)
	GetMessage(c echo.Context, req GetMessageRequest) (any, error)
	GetMessages(c echo.Context, req GetMessagesRequest) (any, error)
	DeleteMessage(c echo.Context, req MessageRequest) (any, error)
	ResolveMessage(c echo.Context, req MessageRequest) (any, error)
	UnresolveMessage(c echo.Context, req MessageRequest) (any, error)

	GetConversationMessages(c echo.Context, req ConversationMessagesRequest) (any, error)
	GetGroupedMessages(c echo.Context, req GroupedMessagesRequest) (any, error)
	GetMessagesByTags(c echo.Context, req MessagesByTagsRequest) (any, error)

	Like(c echo.Context, req MessageRequest) (any, error)
	Unlike(c echo.Context, req MessageRequest) (any, error)
	AddTag(c echo.Context, req AddTagRequest) (any, error)
	UpdateTag(c echo.Context, req UpdateTagRequest) (any, error)
	AddReaction(c echo.Context, req AddReactionRequest) (any, error)
	RemoveReaction(c echo.Context, req RemoveReactionRequest) (any, error)
	AddVote(c echo.Context, req VoteRequest) (any, error)
	RemoveVote(c echo.Context, req VoteRequest) (any, error)
}

type controller struct {
	messageUsecase usecase.MessageUsecase
}

func NewHandler(messageUsecase usecase.MessageUsecase) Controller {
	return &controller{
		messageUsecase: messageUsecase,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "message-core",
	})
}

func (h *controller) CreateMessage(c echo.Context, req CreateMessageRequest) (any, error) {
	message, err := h.messageUsecase.CreateMessage(c.Request().Context(), models.CreateMessageParams{
		ConversationID: req.ConversationID,
		Text:           req.Text,
		Poll:           req.Poll,
	}, req.UserID)
	if err != nil {
		return nil, err
	}
	return pkgmdw.Created(message), nil
}

func (h *controller) GetMessage(c echo.Context, req GetMessageRequest) (any, error) {
	return h.messageUsecase.GetMessage(c.Request().Context(), req.ID)
}

func (h *controller) GetMessages(c echo.Context, req GetMessagesRequest) (any, error) {
	ids, err := util.ConvertListE(req.IDs, models.ParseObjectID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid ids: %s", err))
	}
	return h.messageUsecase.GetMessages(c.Request().Context(), ids)
}

func (h *controller) DeleteMessage(c echo.Context, req MessageRequest) (any, error) {
	return h.messageUsecase.DeleteMessage(c.Request().Context(), req.ID, req.UserID)
}

func (h *controller) ResolveMessage(c echo.Context, req MessageRequest) (any, error) {
	return h.messageUsecase.ResolveMessage(c.Request().Context(), req.ID, req.UserID)
}

func (h *controller) UnresolveMessage(c echo.Context, req MessageRequest) (any, error) {
	return h.messageUsecase.UnresolveMessage(c.Request().Context(), req.ID, req.UserID)
}

func (h *controller) GetConversationMessages(c echo.Context, req ConversationMessagesRequest) (any, error) {
	params := usecase.ConversationMessagesParams{
		ConversationID: req.ConversationID,
		Limit:          req.Limit,
	}
	if req.OffsetID != "" {
		params.OffsetID = util.Ptr(models.ObjectID(req.OffsetID))
	}
	return h.messageUsecase.GetConversationMessages(c.Request().Context(), params)
}

func (h *controller) GetGroupedMessages(c echo.Context, req GroupedMessagesRequest) (any, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	return h.messageUsecase.GetMessagesGroupedByConversation(c.Request().Context(), models.GroupedQuery{
		ConversationIDs: req.ConversationIDs,
		StartDate:       start,
		EndDate:         end,
		Tags:            req.Tags,
	})
}

func (h *controller) GetMessagesByTags(c echo.Context, req MessagesByTagsRequest) (any, error) {
	return h.messageUsecase.FindMessagesByTags(c.Request().Context(), req.Tags)
}

func (h *controller) Like(c echo.Context, req MessageRequest) (any, error) {
	return h.messageUsecase.Like(c.Request().Context(), req.ID, req.UserID)
}

func (h *controller) Unlike(c echo.Context, req MessageRequest) (any, error) {
	return h.messageUsecase.Unlike(c.Request().Context(), req.ID, req.UserID)
}

func (h *controller) AddTag(c echo.Context, req AddTagRequest) (any, error) {
	params := usecase.AddTagParams{
		MessageID: req.ID,
		UserID:    req.UserID,
		Tag:       req.Tag,
	}
	if req.TagID != "" {
		params.TagID = util.Ptr(models.ObjectID(req.TagID))
	}
	return h.messageUsecase.AddTag(c.Request().Context(), params)
}

func (h *controller) UpdateTag(c echo.Context, req UpdateTagRequest) (any, error) {
	return h.messageUsecase.UpdateTag(c.Request().Context(), usecase.UpdateTagParams{
		MessageID: req.ID,
		UserID:    req.UserID,
		TagID:     req.TagID,
		Tag:       req.Tag,
	})
}

func (h *controller) AddReaction(c echo.Context, req AddReactionRequest) (any, error) {
	return h.messageUsecase.AddReaction(c.Request().Context(), usecase.ReactionParams{
		MessageID:       req.ID,
		UserID:          req.UserID,
		Reaction:        req.Reaction,
		ReactionUnicode: req.ReactionUnicode,
	})
}

func (h *controller) RemoveReaction(c echo.Context, req RemoveReactionRequest) (any, error) {
	return h.messageUsecase.RemoveReaction(c.Request().Context(), usecase.ReactionParams{
		MessageID: req.ID,
		UserID:    req.UserID,
		Reaction:  req.Reaction,
	})
}

func (h *controller) AddVote(c echo.Context, req VoteRequest) (any, error) {
	return h.messageUsecase.AddVote(c.Request().Context(), usecase.VoteParams{
		MessageID: req.ID,
		UserID:    req.UserID,
		Option:    req.Option,
	})
}

func (h *controller) RemoveVote(c echo.Context, req VoteRequest) (any, error) {
	return h.messageUsecase.RemoveVote(c.Request().Context(), usecase.VoteParams{
		MessageID: req.ID,
		UserID:    req.UserID,
		Option:    req.Option,
	})
}

// parseDate accepts a calendar date or a full RFC3339 timestamp.
func parseDate(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, value))
	}
	return &t, nil
}
