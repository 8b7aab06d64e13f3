package assistant_test

import (
	"context"
	"sync"

	"github.com/hal9000y/mail-assistant/internal/gservice"
)

type mailboxMock struct {
	ListMessagesFunc func(ctx context.Context, maxResults int64, labelID string) ([]gservice.MessageSummary, error)
	GetMessageFunc   func(ctx context.Context, id string) (*gservice.Message, error)
	TrashMessageFunc func(ctx context.Context, id string) error
	SendReplyFunc    func(ctx context.Context, id, body string) (string, error)

	mu    sync.Mutex
	calls struct {
		ListMessages []listCall
		GetMessage   []string
		TrashMessage []string
		SendReply    []sendCall
	}
}

type listCall struct {
	MaxResults int64
	LabelID    string
}

type sendCall struct {
	ID   string
	Body string
}

func (m *mailboxMock) ListMessages(ctx context.Context, maxResults int64, labelID string) ([]gservice.MessageSummary, error) {
	m.mu.Lock()
	m.calls.ListMessages = append(m.calls.ListMessages, listCall{MaxResults: maxResults, LabelID: labelID})
	m.mu.Unlock()
	if m.ListMessagesFunc == nil {
		panic("mailboxMock.ListMessagesFunc: method is nil but ListMessages was just called")
	}
	return m.ListMessagesFunc(ctx, maxResults, labelID)
}

func (m *mailboxMock) GetMessage(ctx context.Context, id string) (*gservice.Message, error) {
	m.mu.Lock()
	m.calls.GetMessage = append(m.calls.GetMessage, id)
	m.mu.Unlock()
	if m.GetMessageFunc == nil {
		panic("mailboxMock.GetMessageFunc: method is nil but GetMessage was just called")
	}
	return m.GetMessageFunc(ctx, id)
}

func (m *mailboxMock) TrashMessage(ctx context.Context, id string) error {
	m.mu.Lock()
	m.calls.TrashMessage = append(m.calls.TrashMessage, id)
	m.mu.Unlock()
	if m.TrashMessageFunc == nil {
		return nil
	}
	return m.TrashMessageFunc(ctx, id)
}

func (m *mailboxMock) SendReply(ctx context.Context, id, body string) (string, error) {
	m.mu.Lock()
	m.calls.SendReply = append(m.calls.SendReply, sendCall{ID: id, Body: body})
	m.mu.Unlock()
	if m.SendReplyFunc == nil {
		return "sent-" + id, nil
	}
	return m.SendReplyFunc(ctx, id, body)
}

func (m *mailboxMock) mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls.TrashMessage) + len(m.calls.SendReply)
}

type generatorMock struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (g *generatorMock) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.GenerateFunc == nil {
		panic("generatorMock.GenerateFunc: method is nil but Generate was just called")
	}
	return g.GenerateFunc(ctx, prompt)
}

// inbox is a fixed listing with matching full messages.
var inbox = []gservice.MessageSummary{
	{ID: "m1", Subject: "Quarterly invoice", From: "Billing <billing@acme.com>", Snippet: "snippet one", Date: "Mon, 1 Sep 2025"},
	{ID: "m2", Subject: "Lunch on Friday?", From: "John Smith <john@example.com>", Snippet: "snippet two", Date: "Mon, 1 Sep 2025"},
	{ID: "m3", Subject: "Team offsite agenda", From: "Alice <alice@example.com>", Snippet: "snippet three", Date: "Sun, 31 Aug 2025"},
	{ID: "m4", Subject: "Your weekly newsletter", From: "News <news@letters.io>", Snippet: "snippet four", Date: "Sat, 30 Aug 2025"},
}

func fullMessage(s gservice.MessageSummary) *gservice.Message {
	return &gservice.Message{
		ID:       s.ID,
		ThreadID: "t-" + s.ID,
		Subject:  s.Subject,
		From:     s.From,
		To:       "me@example.com",
		Date:     s.Date,
		Body:     "Body of " + s.ID,
		Snippet:  s.Snippet,
	}
}

func newInboxMailbox(list []gservice.MessageSummary) *mailboxMock {
	return &mailboxMock{
		ListMessagesFunc: func(_ context.Context, maxResults int64, _ string) ([]gservice.MessageSummary, error) {
			if int(maxResults) < len(list) {
				return list[:maxResults], nil
			}
			return list, nil
		},
		GetMessageFunc: func(_ context.Context, id string) (*gservice.Message, error) {
			for _, s := range list {
				if s.ID == id {
					return fullMessage(s), nil
				}
			}
			return nil, gservice.ErrNotFound
		},
	}
}
