package assistant

import (
	"errors"
	"regexp"
	"strings"
)

// Turn is one decoded chat turn. The concrete types are FreeText, Selection,
// CategoryPick, ComposedReply and ConfirmRequest.
type Turn interface {
	isTurn()
}

// FreeText is a natural-language message that goes through intent extraction.
type FreeText struct {
	Text string
}

// Selection is a message picked from a listing together with the action the
// listing was shown for.
type Selection struct {
	EmailID    string
	ActionType string
}

// CategoryPick is a category button press.
type CategoryPick struct {
	LabelID string
}

// ComposedReply carries a reply body the user typed for a message.
type ComposedReply struct {
	EmailID string
	Text    string
}

// ConfirmRequest resolves a PendingAction.
type ConfirmRequest struct {
	Action       string `json:"action"`
	EmailID      string `json:"email_id"`
	ReplyText    string `json:"reply_text"`
	Confirmation string `json:"confirmation"`
}

func (FreeText) isTurn()       {}
func (Selection) isTurn()      {}
func (CategoryPick) isTurn()   {}
func (ComposedReply) isTurn()  {}
func (ConfirmRequest) isTurn() {}

// Types of ActionPayload.
const (
	PayloadSelection     = "selection"
	PayloadCategory      = "category"
	PayloadComposedReply = "composed_reply"
)

var ErrUnknownPayload = errors.New("unknown action payload type")

// ActionPayload is the explicit, structured form of a directive. When present
// it takes precedence over directives embedded in the message text.
type ActionPayload struct {
	Type       string `json:"type"`
	EmailID    string `json:"email_id,omitempty"`
	ActionType string `json:"action_type,omitempty"`
	Category   string `json:"category,omitempty"`
	ReplyText  string `json:"reply_text,omitempty"`
}

// Turn decodes the payload into its variant.
func (p ActionPayload) Turn() (Turn, error) {
	switch p.Type {
	case PayloadSelection:
		return Selection{EmailID: p.EmailID, ActionType: p.ActionType}, nil
	case PayloadCategory:
		return CategoryPick{LabelID: strings.ToUpper(strings.TrimSpace(p.Category))}, nil
	case PayloadComposedReply:
		return ComposedReply{EmailID: p.EmailID, Text: strings.TrimSpace(p.ReplyText)}, nil
	}

	return nil, ErrUnknownPayload
}

var (
	emailIDDirective    = regexp.MustCompile(`email_id:([a-zA-Z0-9_-]+)`)
	actionTypeDirective = regexp.MustCompile(`action_type:([a-zA-Z]+)`)
	categoryDirective   = regexp.MustCompile(`category:([A-Za-z0-9_-]+)`)
	replyTextDirective  = regexp.MustCompile(`(?s)reply_text:([a-zA-Z0-9_-]+):(.+)`)
)

// ParseTurn scans message for embedded directives in priority order: message
// selection, category pick, composed reply. A message without any of them is
// FreeText.
func ParseTurn(message string) Turn {
	if m := emailIDDirective.FindStringSubmatch(message); m != nil {
		sel := Selection{EmailID: m[1]}
		if a := actionTypeDirective.FindStringSubmatch(message); a != nil {
			sel.ActionType = a[1]
		}
		return sel
	}

	if m := categoryDirective.FindStringSubmatch(message); m != nil {
		return CategoryPick{LabelID: strings.ToUpper(m[1])}
	}

	if m := replyTextDirective.FindStringSubmatch(message); m != nil {
		return ComposedReply{EmailID: m[1], Text: strings.TrimSpace(m[2])}
	}

	return FreeText{Text: message}
}
