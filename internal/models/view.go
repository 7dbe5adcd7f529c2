package models

import "time"

// MessageView is the flat projection handed to callers.
type MessageView struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	Text           string       `json:"text"`
	RichContent    *RichContent `json:"rich_content,omitempty"`
	Tags           []Tag        `json:"tags"`
	Reactions      []Reaction   `json:"reactions"`
	Likes          []string     `json:"likes"`
	Created        time.Time    `json:"created"`
	Deleted        bool         `json:"deleted"`
	Resolved       bool         `json:"resolved"`
}

type MessagePageView struct {
	Messages []*MessageView `json:"messages"`
	HasMore  bool           `json:"has_more"`
}

func (m *Message) View() *MessageView {
	if m == nil {
		return nil
	}

	reactions := make([]Reaction, 0, len(m.Reactions))
	for _, r := range m.Reactions {
		r.UserIDs = orEmpty(r.UserIDs)
		reactions = append(reactions, r)
	}

	var rich *RichContent
	if m.RichContent != nil {
		rich = &RichContent{}
		if p := m.RichContent.Poll; p != nil {
			options := make([]PollOption, 0, len(p.Options))
			for _, o := range p.Options {
				o.Votes = orEmpty(o.Votes)
				options = append(options, o)
			}
			rich.Poll = &Poll{Question: p.Question, Options: options}
		}
	}

	return &MessageView{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		RichContent:    rich,
		Tags:           orEmpty(m.Tags),
		Reactions:      reactions,
		Likes:          orEmpty(m.Likes),
		Created:        m.Created,
		Deleted:        m.Deleted,
		Resolved:       m.Resolved,
	}
}

func (p *MessagePage) View() *MessagePageView {
	views := make([]*MessageView, 0, len(p.Messages))
	for _, m := range p.Messages {
		views = append(views, m.View())
	}
	return &MessagePageView{Messages: views, HasMore: p.HasMore}
}

func ViewMessages(messages []*Message) []*MessageView {
	views := make([]*MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.View())
	}
	return views
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
