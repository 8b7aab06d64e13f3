package gservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"google.golang.org/api/gmail/v1"
)

var replyHeaders = []string{"From", "Reply-To", "Subject", "Message-ID", "References"}

// SendReply answers a message in its thread and returns the provider id of the
// sent message.
func (m *Gmail) SendReply(ctx context.Context, msgID, body string) (string, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return "", fmt.Errorf("newSvc failed: %w", err)
	}

	orig, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("metadata").
		MetadataHeaders(replyHeaders...).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("messages.Get failed: %w", classify(err))
	}

	raw, err := buildReply(orig, body, time.Now())
	if err != nil {
		return "", fmt.Errorf("buildReply failed: %w", err)
	}

	sent, err := svc.Users.Messages.Send(gmailUserID, &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(raw),
		ThreadId: orig.ThreadId,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("messages.Send failed: %w", classify(err))
	}

	return sent.Id, nil
}

func buildReply(orig *gmail.Message, body string, now time.Time) ([]byte, error) {
	parsed := extractMessage(orig)

	replyTo := parsed.From
	if orig.Payload != nil {
		for _, h := range orig.Payload.Headers {
			if h.Name == "Reply-To" && strings.TrimSpace(h.Value) != "" {
				replyTo = h.Value
			}
		}
	}

	var h mail.Header
	h.SetDate(now)
	h.SetSubject(replySubject(parsed.Subject))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	if addrs, err := mail.ParseAddressList(replyTo); err == nil && len(addrs) > 0 {
		h.SetAddressList("To", addrs)
	} else {
		h.Set("To", replyTo)
	}

	if parsed.MessageID != "" {
		h.Set("In-Reply-To", parsed.MessageID)
		h.Set("References", strings.TrimSpace(parsed.References+" "+parsed.MessageID))
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("mail.CreateSingleInlineWriter failed: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("w.Write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("w.Close failed: %w", err)
	}

	return buf.Bytes(), nil
}

func replySubject(subject string) string {
	if subject == defaultSubject {
		subject = ""
	}
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return strings.TrimSpace("Re: " + subject)
}
