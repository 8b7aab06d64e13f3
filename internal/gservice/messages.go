package gservice

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/gmail/v1"
)

var summaryHeaders = []string{"From", "Subject", "Date"}

// ListMessages returns up to maxResults of the most recent messages, optionally
// restricted to a label. Messages that cannot be fetched are skipped.
func (m *Gmail) ListMessages(ctx context.Context, maxResults int64, labelID string) ([]MessageSummary, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(gmailUserID).
		MaxResults(maxResults).
		Context(ctx)
	if labelID != "" {
		call = call.LabelIds(labelID)
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", classify(err))
	}

	refs := result.Messages
	if int64(len(refs)) > maxResults {
		refs = refs[:maxResults]
	}

	summaries := make([]MessageSummary, 0, len(refs))
	for _, ref := range refs {
		msg, err := svc.Users.Messages.Get(gmailUserID, ref.Id).
			Format("metadata").
			MetadataHeaders(summaryHeaders...).
			Context(ctx).
			Do()
		if err != nil {
			log.Println("messages.Get failed, skipping", ref.Id, err)
			continue
		}

		summaries = append(summaries, extractSummary(msg))
	}

	return summaries, nil
}

// GetMessage fetches one message with its body decoded to plain text.
func (m *Gmail) GetMessage(ctx context.Context, msgID string) (*Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", classify(err))
	}

	out := extractMessage(msg)
	if msg.Payload != nil {
		textBody, htmlBody := extractMessageBodies(msg.Payload)
		out.Body = m.bodyText(textBody, htmlBody)
	}

	return out, nil
}

// TrashMessage moves a message to the trash. It stays recoverable there.
func (m *Gmail) TrashMessage(ctx context.Context, msgID string) error {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	if _, err := svc.Users.Messages.Trash(gmailUserID, msgID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("messages.Trash failed: %w", classify(err))
	}

	return nil
}

func (m *Gmail) bodyText(textBody, htmlBody string) string {
	if textBody != "" {
		return trimBody(textBody)
	}
	if htmlBody == "" || m.conv == nil {
		return ""
	}

	converted, err := m.conv.HTML2Text([]byte(htmlBody))
	if err != nil {
		log.Println("conv.HTML2Text failed", err)
		return ""
	}

	return trimBody(converted)
}

func extractSummary(msg *gmail.Message) MessageSummary {
	return extractMessage(msg).Summary()
}

func extractMessage(msg *gmail.Message) *Message {
	out := &Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Subject:  defaultSubject,
		From:     defaultSender,
	}

	if msg.Payload == nil {
		return out
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			out.From = header.Value
		case "To":
			out.To = header.Value
		case "Subject":
			out.Subject = header.Value
		case "Date":
			out.Date = header.Value
		case "Message-ID", "Message-Id":
			out.MessageID = header.Value
		case "References":
			out.References = header.Value
		}
	}

	return out
}
