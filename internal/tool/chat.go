// Package tool exposes the email assistant over the Model Context Protocol.
package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-assistant/internal/assistant"
	"github.com/hal9000y/mail-assistant/internal/auth"
)

type ChatMessageRequest struct {
	SessionToken string                   `json:"session_token" jsonschema:"session token issued by the sign-in flow"`
	Message      string                   `json:"message,omitempty" jsonschema:"the user's message"`
	Action       *assistant.ActionPayload `json:"action,omitempty" jsonschema:"explicit selection, category or composed reply"`
}

type ConfirmActionRequest struct {
	SessionToken string `json:"session_token" jsonschema:"session token issued by the sign-in flow"`
	Action       string `json:"action" jsonschema:"send_reply or delete"`
	EmailID      string `json:"email_id" jsonschema:"the email the action applies to"`
	ReplyText    string `json:"reply_text,omitempty" jsonschema:"reply body for send_reply"`
	Confirmation string `json:"confirmation" jsonschema:"the user's answer, e.g. yes or no"`
}

type chatter interface {
	Chat(ctx context.Context, mb assistant.Mailbox, req assistant.ChatRequest) assistant.Response
	Confirm(ctx context.Context, mb assistant.Mailbox, req assistant.ConfirmRequest) assistant.Response
}

type verifier interface {
	Verify(token string) (*auth.Session, error)
}

// MailboxFactory builds a mailbox bound to one Gmail access token.
type MailboxFactory func(accessToken string) assistant.Mailbox

type Handler struct {
	assistant  chatter
	verifier   verifier
	newMailbox MailboxFactory
}

func (h *Handler) mailbox(token string) (assistant.Mailbox, error) {
	sess, err := h.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("verifier.Verify failed: %w", err)
	}

	return h.newMailbox(sess.AccessToken), nil
}

func (h *Handler) ChatMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatMessageRequest,
) (*mcp.CallToolResult, assistant.Response, error) {
	mb, err := h.mailbox(input.SessionToken)
	if err != nil {
		return nil, assistant.Response{}, err
	}

	return nil, h.assistant.Chat(ctx, mb, assistant.ChatRequest{
		Message: input.Message,
		Action:  input.Action,
	}), nil
}

func (h *Handler) ConfirmAction(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConfirmActionRequest,
) (*mcp.CallToolResult, assistant.Response, error) {
	mb, err := h.mailbox(input.SessionToken)
	if err != nil {
		return nil, assistant.Response{}, err
	}

	return nil, h.assistant.Confirm(ctx, mb, assistant.ConfirmRequest{
		Action:       input.Action,
		EmailID:      input.EmailID,
		ReplyText:    input.ReplyText,
		Confirmation: input.Confirmation,
	}), nil
}
