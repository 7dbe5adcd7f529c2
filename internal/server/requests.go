package server

import (
	"github.com/nguyentranbao-ct/message-core/internal/models"
)

type MessageRequest struct {
	ID     models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
	UserID string          `header:"X-User-ID" json:"-" validate:"required"`
}

type CreateMessageRequest struct {
	UserID         string                   `header:"X-User-ID" json:"-" validate:"required"`
	ConversationID string                   `json:"conversation_id" validate:"required"`
	Text           string                   `json:"text"`
	Poll           *models.CreatePollParams `json:"poll"`
}

type GetMessageRequest struct {
	ID models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
}

type GetMessagesRequest struct {
	IDs []string `query:"ids" validate:"required,min=1"`
}

type ConversationMessagesRequest struct {
	ConversationID string `param:"id" json:"-" validate:"required"`
	Limit          int    `query:"limit" validate:"gte=0"`
	OffsetID       string `query:"offset_id" validate:"omitempty,objectid"`
}

type GroupedMessagesRequest struct {
	ConversationIDs []string `query:"conversation_ids" validate:"required,min=1,dive,required"`
	StartDate       string   `query:"start_date"`
	EndDate         string   `query:"end_date"`
	Tags            []string `query:"tags"`
}

type MessagesByTagsRequest struct {
	Tags []string `query:"tags" validate:"required,min=1,dive,required"`
}

type AddTagRequest struct {
	ID     models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
	UserID string          `header:"X-User-ID" json:"-" validate:"required"`
	Tag    string          `json:"tag" validate:"required"`
	TagID  string          `json:"tag_id" validate:"omitempty,objectid"`
}

type UpdateTagRequest struct {
	ID     models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
	TagID  models.ObjectID `param:"tag_id" json:"-" validate:"required,objectid"`
	UserID string          `header:"X-User-ID" json:"-" validate:"required"`
	Tag    string          `json:"tag" validate:"required"`
}

type AddReactionRequest struct {
	ID              models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
	UserID          string          `header:"X-User-ID" json:"-" validate:"required"`
	Reaction        string          `json:"reaction" validate:"required"`
	ReactionUnicode string          `json:"reaction_unicode"`
}

type RemoveReactionRequest struct {
	ID       models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
	UserID   string          `header:"X-User-ID" json:"-" validate:"required"`
	Reaction string          `param:"reaction" json:"-" validate:"required"`
}

// VoteRequest reads the option from the body on POST and from the query on DELETE.
type VoteRequest struct {
	ID     models.ObjectID `param:"id" json:"-" validate:"required,objectid"`
	UserID string          `header:"X-User-ID" json:"-" validate:"required"`
	Option string          `json:"option" query:"option" validate:"required"`
}
