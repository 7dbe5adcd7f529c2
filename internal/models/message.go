package models

import (
	"strings"
	"time"
)

// DefaultPageSize is the conversation page size used when none is requested.
const DefaultPageSize = 40

// MaxPageSize caps any page size forwarded to the store.
const MaxPageSize = 1000

// Message is a single chat message inside a conversation.
type Message struct {
	ID             ObjectID     `bson:"_id,omitempty"`
	ConversationID string       `bson:"conversation_id"`
	SenderID       string       `bson:"sender_id"`
	Text           string       `bson:"text"`
	RichContent    *RichContent `bson:"rich_content,omitempty"`
	Tags           []Tag        `bson:"tags"`
	Reactions      []Reaction   `bson:"reactions"`
	Likes          []string     `bson:"likes"`
	Created        time.Time    `bson:"created"`
	Deleted        bool         `bson:"deleted"`
	Resolved       bool         `bson:"resolved,omitempty"`
}

func (Message) CollectionName() string {
	return "messages"
}

func (m Message) GetObjectID() ObjectID {
	return m.ID
}

// Tag is a labelled marker on a message. The id never changes once assigned.
type Tag struct {
	ID  ObjectID `bson:"id" json:"id"`
	Tag string   `bson:"tag" json:"tag"`
}

// Reaction groups the users that reacted with the same reaction value.
// UserIDs is a set.
type Reaction struct {
	Reaction        string   `bson:"reaction" json:"reaction"`
	ReactionUnicode string   `bson:"reaction_unicode" json:"reaction_unicode"`
	UserIDs         []string `bson:"user_ids" json:"user_ids"`
}

type RichContent struct {
	Poll *Poll `bson:"poll,omitempty" json:"poll,omitempty"`
}

type Poll struct {
	Question string       `bson:"question" json:"question"`
	Options  []PollOption `bson:"options" json:"options"`
}

// PollOption is addressed by its label, so labels are unique within a poll.
type PollOption struct {
	Option string   `bson:"option" json:"option"`
	Votes  []string `bson:"votes" json:"votes"`
}

type CreateMessageParams struct {
	ConversationID string            `json:"conversation_id" validate:"required"`
	Text           string            `json:"text"`
	Poll           *CreatePollParams `json:"poll,omitempty"`
}

type CreatePollParams struct {
	Question string   `json:"question"`
	Options  []string `json:"options" validate:"required,min=1,dive,required"`
}

// NewMessage builds the document persisted by Create. Set fields start as
// empty arrays so the store's array operators always find an array.
func NewMessage(params CreateMessageParams, senderID string, now time.Time) *Message {
	return &Message{
		ConversationID: params.ConversationID,
		SenderID:       senderID,
		Text:           params.Text,
		RichContent:    BuildRichContent(params),
		Tags:           []Tag{},
		Reactions:      []Reaction{},
		Likes:          []string{},
		Created:        now,
		Deleted:        false,
	}
}

// BuildRichContent returns nil when the params carry no structured payload.
func BuildRichContent(params CreateMessageParams) *RichContent {
	if params.Poll == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(params.Poll.Options))
	options := make([]PollOption, 0, len(params.Poll.Options))
	for _, label := range params.Poll.Options {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		options = append(options, PollOption{Option: label, Votes: []string{}})
	}

	return &RichContent{
		Poll: &Poll{
			Question: params.Poll.Question,
			Options:  options,
		},
	}
}

// MessagePage is one window of a conversation, oldest first.
type MessagePage struct {
	Messages []*Message
	HasMore  bool
}

// ConversationMessages is one group of the conversation aggregation view.
type ConversationMessages struct {
	ConversationID string           `bson:"conversation_id" json:"conversation_id"`
	Messages       []GroupedMessage `bson:"messages" json:"messages"`
}

type GroupedMessage struct {
	SenderID string `bson:"sender_id" json:"sender_id"`
	Message  string `bson:"message" json:"message"`
}

// GroupedQuery filters the conversation aggregation view. Dates are
// day-granular and inclusive.
type GroupedQuery struct {
	ConversationIDs []string
	StartDate       *time.Time
	EndDate         *time.Time
	Tags            []string
}
