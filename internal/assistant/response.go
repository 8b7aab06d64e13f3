package assistant

import (
	"encoding/json"

	"github.com/hal9000y/mail-assistant/internal/gservice"
)

// Values of Response.ActionRequired.
const (
	ConfirmSend   = "confirm_send"
	ConfirmDelete = "confirm_delete"
	ComposeReply  = "compose_reply"
)

// Values of Response.Status.
const (
	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// Response is the single payload shape of every chat and confirmation turn.
// Which fields are set depends on the kind of answer: plain answer, listing
// for selection, pending confirmation or resolved action.
type Response struct {
	Reply string `json:"reply"`

	Emails        []EmailItem `json:"emails,omitempty"`
	EmailCount    int         `json:"email_count,omitempty"`
	ActionType    string      `json:"action_type,omitempty"`
	ShowEmailList bool        `json:"show_email_list,omitempty"`

	EmailID        string         `json:"email_id,omitempty"`
	EmailContent   *EmailContent  `json:"email_content,omitempty"`
	GeneratedReply string         `json:"generated_reply,omitempty"`
	OriginalEmail  *OriginalEmail `json:"original_email,omitempty"`
	ActionRequired string         `json:"action_required,omitempty"`
	PendingAction  *PendingAction `json:"pending_action,omitempty"`

	Categories          []Category `json:"categories,omitempty"`
	ShowCategoryButtons bool       `json:"show_category_buttons,omitempty"`

	Status string        `json:"status,omitempty"`
	Result *ActionResult `json:"result,omitempty"`
}

// MarshalJSON keeps an empty but non-nil email list on the wire as [].
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	out := struct {
		plain
		Emails *[]EmailItem `json:"emails,omitempty"`
	}{plain: plain(r)}
	if r.Emails != nil {
		out.Emails = &r.Emails
	}

	return json.Marshal(out)
}

// EmailItem is one entry of a listing. EmailNumber and Summary are only set
// for batch summaries.
type EmailItem struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	From        string `json:"from"`
	Snippet     string `json:"snippet,omitempty"`
	Date        string `json:"date"`
	EmailNumber int    `json:"email_number,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

func itemsFromSummaries(list []gservice.MessageSummary) []EmailItem {
	items := make([]EmailItem, 0, len(list))
	for _, m := range list {
		items = append(items, EmailItem{
			ID:      m.ID,
			Subject: m.Subject,
			From:    m.From,
			Snippet: m.Snippet,
			Date:    m.Date,
		})
	}

	return items
}

type EmailContent struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type OriginalEmail struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
}

// Actions a PendingAction can name.
const (
	ActionSendReply = "send_reply"
	ActionDelete    = "delete"
)

// PendingAction describes a mutation awaiting the user's explicit
// confirmation. It is never stored server-side; the caller echoes it back.
type PendingAction struct {
	Action    string `json:"action"`
	EmailID   string `json:"email_id"`
	ReplyText string `json:"reply_text,omitempty"`
}

// Confirm builds the confirmation request that resolves p with the user's
// answer.
func (p PendingAction) Confirm(answer string) ConfirmRequest {
	return ConfirmRequest{
		Action:       p.Action,
		EmailID:      p.EmailID,
		ReplyText:    p.ReplyText,
		Confirmation: answer,
	}
}

type ActionResult struct {
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message,omitempty"`
}
