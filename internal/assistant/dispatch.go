package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hal9000y/mail-assistant/internal/gservice"
	"github.com/hal9000y/mail-assistant/internal/llm"
)

const (
	selectionListSize = 10
	deleteListSize    = 20
	categoryListSize  = 5
	digestListSize    = 50
	digestExpandSize  = 20
	groupListSize     = 20
)

var actionVerbs = map[Kind]string{
	KindRead:      "read",
	KindSummarize: "summarize",
	KindReply:     "respond to",
	KindDelete:    "delete",
}

var (
	listReadButton      = phrases("view & read", "view read")
	listSummarizeButton = phrases("summarize emails")
	genericReply        = phrases("help me reply", "reply & compose", "reply compose")
	genericDelete       = phrases("help me delete", "delete & organize", "delete organize")
)

// Dispatch answers a resolved intent. It never sends or trashes mail; those
// come back as a PendingAction.
func (a *Assistant) Dispatch(ctx context.Context, mb Mailbox, in Intent, raw string) (Response, error) {
	msg := strings.ToLower(raw)

	switch in.Kind {
	case KindRead:
		if listReadButton(msg) {
			return a.emailList(ctx, mb, KindRead)
		}
		return a.readOrSummarize(ctx, mb, in, raw, a.readSingle)

	case KindSummarize:
		if listSummarizeButton(msg) {
			return a.emailList(ctx, mb, KindSummarize)
		}
		return a.readOrSummarize(ctx, mb, in, raw, a.summarizeSingle)

	case KindReply:
		t := parseTarget(raw)
		if genericReply(msg) || t.empty() {
			return a.emailList(ctx, mb, KindReply)
		}
		return a.draftReply(ctx, mb, t, raw)

	case KindDelete:
		t := parseTarget(raw)
		if genericDelete(msg) || t.empty() {
			return a.emailList(ctx, mb, KindDelete)
		}
		return a.deleteTarget(ctx, mb, t)

	case KindDigest:
		return a.digest(ctx, mb)

	case KindGroup:
		return a.group(ctx, mb)

	case KindShowCategories:
		return categoryMenu("Select a category to see the top 5 emails:"), nil

	case KindGreeting, KindHelp:
		return Response{Reply: helpText}, nil
	}

	return a.unknown(ctx, raw), nil
}

func (a *Assistant) selection(ctx context.Context, mb Mailbox, s Selection) (Response, error) {
	if s.EmailID == "" {
		return Response{Reply: clarification}, nil
	}

	switch Kind(s.ActionType) {
	case KindRead:
		return a.readSingle(ctx, mb, s.EmailID)
	case KindSummarize:
		return a.summarizeSingle(ctx, mb, s.EmailID)
	case KindReply:
		return a.composePrompt(ctx, mb, s.EmailID)
	case KindDelete:
		return a.deleteSingle(ctx, mb, s.EmailID)
	}

	return Response{Reply: clarification}, nil
}

func (a *Assistant) emailList(ctx context.Context, mb Mailbox, kind Kind) (Response, error) {
	list, err := mb.ListMessages(ctx, selectionListSize, "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to fetch emails: %w", err)
	}

	if len(list) == 0 {
		return Response{Reply: "You don't have any emails in your inbox."}, nil
	}

	return Response{
		Reply:         fmt.Sprintf("Click the email you want to %s:", actionVerbs[kind]),
		Emails:        itemsFromSummaries(list),
		ActionType:    string(kind),
		ShowEmailList: true,
	}, nil
}

type singleHandler func(ctx context.Context, mb Mailbox, id string) (Response, error)

// readOrSummarize handles a targeted request with single, and anything else as
// a batch of summaries.
func (a *Assistant) readOrSummarize(ctx context.Context, mb Mailbox, in Intent, raw string, single singleHandler) (Response, error) {
	t := parseTarget(raw)
	if t.empty() {
		return a.batchSummaries(ctx, mb, numEmails(in.Parameters))
	}

	list, err := mb.ListMessages(ctx, t.window(selectionListSize), "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to fetch emails: %w", err)
	}
	if len(list) == 0 {
		return Response{Reply: "You don't have any emails in your inbox."}, nil
	}

	return single(ctx, mb, t.resolve(list).ID)
}

func (a *Assistant) batchSummaries(ctx context.Context, mb Mailbox, n int) (Response, error) {
	list, err := mb.ListMessages(ctx, int64(n), "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to read emails: %w", err)
	}

	if len(list) == 0 {
		return Response{Reply: "You don't have any emails in your inbox."}, nil
	}

	items := make([]EmailItem, 0, len(list))
	for i, s := range list {
		m, err := mb.GetMessage(ctx, s.ID)
		if err != nil {
			log.Printf("mailbox.GetMessage %s failed: %v", s.ID, err)
			m = &gservice.Message{ID: s.ID, Subject: s.Subject, From: s.From, Snippet: s.Snippet, Body: s.Snippet}
		}

		summary, err := a.generate(ctx, summaryPrompt(m))
		if err != nil {
			log.Printf("summary for email %d failed: %v", i+1, err)
			summary = m.Snippet
		}

		items = append(items, EmailItem{
			ID:          m.ID,
			Subject:     m.Subject,
			From:        m.From,
			Snippet:     m.Snippet,
			Date:        m.Date,
			EmailNumber: i + 1,
			Summary:     summary,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your last %d emails with AI-generated summaries:\n\n", len(items))
	for _, it := range items {
		fmt.Fprintf(&b, "**Email #%d**\nFrom: %s\nSubject: %s\nSummary: %s\n\n", it.EmailNumber, it.From, it.Subject, it.Summary)
	}
	b.WriteString("To read a specific email in full, say 'read email [number]' or 'show me email 1'")

	return Response{Reply: b.String(), Emails: items}, nil
}

func (a *Assistant) readSingle(ctx context.Context, mb Mailbox, id string) (Response, error) {
	m, err := mb.GetMessage(ctx, id)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read email: %w", err)
	}

	return Response{
		Reply:   "Here's the email.",
		EmailID: id,
		EmailContent: &EmailContent{
			From:    m.From,
			To:      orDefault(m.To, "N/A"),
			Date:    orDefault(m.Date, "N/A"),
			Subject: m.Subject,
			Body:    strings.TrimSpace(m.Body),
		},
	}, nil
}

func (a *Assistant) summarizeSingle(ctx context.Context, mb Mailbox, id string) (Response, error) {
	m, err := mb.GetMessage(ctx, id)
	if err != nil {
		return Response{}, fmt.Errorf("failed to summarize email: %w", err)
	}

	summary, err := a.generate(ctx, summaryPrompt(m))
	if err != nil {
		return Response{}, fmt.Errorf("failed to summarize email: %w", err)
	}

	return Response{
		Reply:   fmt.Sprintf("**Email Summary**\n\n**From:** %s\n**Subject:** %s\n\n**AI Summary:**\n%s", m.From, m.Subject, summary),
		EmailID: id,
	}, nil
}

// composePrompt asks the user to type a reply to id.
func (a *Assistant) composePrompt(ctx context.Context, mb Mailbox, id string) (Response, error) {
	m, err := mb.GetMessage(ctx, id)
	if err != nil {
		return Response{}, fmt.Errorf("failed to prepare reply: %w", err)
	}

	return composeResponse(m, "Please type your reply below. I'll show you a preview before sending."), nil
}

func composeResponse(m *gservice.Message, instruction string) Response {
	preview := truncate(m.Body, previewLimit)
	if preview != m.Body {
		preview += "..."
	}

	return Response{
		Reply: fmt.Sprintf("**Reply to Email**\n\n**Original Email:**\nFrom: %s\nSubject: %s\n\n---\n\n%s\n\n---\n\n%s",
			m.From, m.Subject, preview, instruction),
		EmailID:        m.ID,
		OriginalEmail:  &OriginalEmail{From: m.From, Subject: m.Subject},
		ActionRequired: ComposeReply,
	}
}

func (a *Assistant) composedReply(ctx context.Context, mb Mailbox, c ComposedReply) (Response, error) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return Response{
			Reply:          "Your reply is empty. Please type your reply message.",
			EmailID:        c.EmailID,
			ActionRequired: ComposeReply,
		}, nil
	}

	original := OriginalEmail{From: "Unknown", Subject: "Unknown"}
	if m, err := mb.GetMessage(ctx, c.EmailID); err != nil {
		log.Printf("mailbox.GetMessage %s failed: %v", c.EmailID, err)
	} else {
		original = OriginalEmail{From: m.From, Subject: m.Subject}
	}

	return confirmSend(c.EmailID, text, original,
		fmt.Sprintf("**Reply Preview**\n\n**Replying to:**\nFrom: %s\nSubject: %s\n\n---\n\n**Your Reply:**\n%s\n\n---\n\n"+
			"Would you like to send this reply? Type 'yes' or 'send' to confirm, or 'no' to cancel.",
			original.From, original.Subject, text)), nil
}

func confirmSend(id, text string, original OriginalEmail, reply string) Response {
	return Response{
		Reply:          reply,
		EmailID:        id,
		GeneratedReply: text,
		OriginalEmail:  &original,
		ActionRequired: ConfirmSend,
		PendingAction:  &PendingAction{Action: ActionSendReply, EmailID: id, ReplyText: text},
	}
}

func (a *Assistant) draftReply(ctx context.Context, mb Mailbox, t target, raw string) (Response, error) {
	list, err := mb.ListMessages(ctx, t.window(selectionListSize), "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate reply: %w", err)
	}
	if len(list) == 0 {
		return Response{Reply: "You don't have any emails to reply to."}, nil
	}

	m, err := mb.GetMessage(ctx, t.resolve(list).ID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate reply: %w", err)
	}

	draft, err := a.generate(ctx, replyPrompt(m, raw))
	if err != nil {
		log.Printf("reply draft failed: %v", err)
		return composeResponse(m, "I couldn't draft a reply automatically. Please type your reply below and I'll show you a preview before sending."), nil
	}
	draft = strings.TrimSpace(draft)

	return confirmSend(m.ID, draft, OriginalEmail{From: m.From, Subject: m.Subject},
		fmt.Sprintf("I've generated a reply for you:\n\n**Original Email:**\nFrom: %s\nSubject: %s\n\n**Generated Reply:**\n%s\n\n"+
			"Would you like to send this reply? (Confirm by saying \"send\" or \"yes\")", m.From, m.Subject, draft)), nil
}

func confirmDelete(id, from, subject string) Response {
	return Response{
		Reply: fmt.Sprintf("I found this email:\n\nFrom: %s\nSubject: %s\n\n"+
			"Are you sure you want to delete it? (Say 'yes' or 'confirm' to delete, or 'no' to cancel)", from, subject),
		EmailID:        id,
		ActionRequired: ConfirmDelete,
		PendingAction:  &PendingAction{Action: ActionDelete, EmailID: id},
	}
}

func (a *Assistant) deleteSingle(ctx context.Context, mb Mailbox, id string) (Response, error) {
	from, subject := "unknown", "email"
	if m, err := mb.GetMessage(ctx, id); err != nil {
		log.Printf("mailbox.GetMessage %s failed: %v", id, err)
	} else {
		from, subject = m.From, m.Subject
	}

	return confirmDelete(id, from, subject), nil
}

func (a *Assistant) deleteTarget(ctx context.Context, mb Mailbox, t target) (Response, error) {
	list, err := mb.ListMessages(ctx, t.window(deleteListSize), "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to process delete request: %w", err)
	}
	if len(list) == 0 {
		return Response{Reply: "You don't have any emails to delete."}, nil
	}

	m := t.resolve(list)
	return confirmDelete(m.ID, m.From, m.Subject), nil
}

// expand fetches full messages for list, skipping the ones that fail.
func expand(ctx context.Context, mb Mailbox, list []gservice.MessageSummary) []*gservice.Message {
	out := make([]*gservice.Message, 0, len(list))
	for _, s := range list {
		m, err := mb.GetMessage(ctx, s.ID)
		if err != nil {
			log.Printf("mailbox.GetMessage %s failed: %v", s.ID, err)
			continue
		}
		out = append(out, m)
	}
	return out
}

func (a *Assistant) digest(ctx context.Context, mb Mailbox) (Response, error) {
	list, err := mb.ListMessages(ctx, digestListSize, "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate digest: %w", err)
	}
	if len(list) == 0 {
		return Response{Reply: "You don't have any emails today."}, nil
	}

	full := expand(ctx, mb, list[:min(len(list), digestExpandSize)])

	digest, err := a.generate(ctx, digestPrompt(full))
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate digest: %w", err)
	}

	return Response{
		Reply:      "**Your Daily Email Digest**\n\n" + digest,
		EmailCount: len(full),
	}, nil
}

func (a *Assistant) group(ctx context.Context, mb Mailbox) (Response, error) {
	list, err := mb.ListMessages(ctx, groupListSize, "")
	if err != nil {
		return Response{}, fmt.Errorf("failed to group emails: %w", err)
	}
	if len(list) == 0 {
		return Response{Reply: "You don't have enough emails to group."}, nil
	}

	full := expand(ctx, mb, list)

	grouping, err := a.generate(ctx, groupPrompt(full))
	if err != nil {
		return Response{}, fmt.Errorf("failed to group emails: %w", err)
	}

	return Response{
		Reply: fmt.Sprintf("**Smart Inbox Grouping**\n\nI've analyzed your %d emails:\n\n%s\n\n"+
			"Say \"categorize mails\" to browse a category.", len(full), grouping),
		EmailCount: len(full),
	}, nil
}

func categoryMenu(reply string) Response {
	return Response{
		Reply:               reply,
		Categories:          Categories(),
		ShowCategoryButtons: true,
	}
}

func (a *Assistant) categoryEmails(ctx context.Context, mb Mailbox, labelID string) (Response, error) {
	c, ok := lookupCategory(labelID)
	if !ok {
		return categoryMenu("Unknown category. Please choose one of: All Mails, Important, Work, Promotion, Spam."), nil
	}

	list, err := mb.ListMessages(ctx, categoryListSize, c.ID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to fetch emails for that category: %w", err)
	}

	if len(list) == 0 {
		return Response{
			Reply:      fmt.Sprintf("No emails found in **%s**.", c.Label),
			Emails:     []EmailItem{},
			ActionType: string(KindRead),
		}, nil
	}

	return Response{
		Reply:         fmt.Sprintf("Top %d emails in **%s** (click to read):", categoryListSize, c.Label),
		Emails:        itemsFromSummaries(list),
		ActionType:    string(KindRead),
		ShowEmailList: true,
	}, nil
}

func (a *Assistant) unknown(ctx context.Context, raw string) Response {
	reply, err := a.generate(ctx, unknownPrompt(raw))
	if err != nil {
		log.Printf("unknown intent prompt failed: %v", err)
		return Response{Reply: fallbackMenu}
	}

	return Response{Reply: reply}
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	if a.gen == nil {
		return "", llm.ErrNotConfigured
	}
	return a.gen.Generate(ctx, prompt)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
