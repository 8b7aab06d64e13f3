// Package assistant resolves chat turns into mailbox actions. Reads are
// answered directly; sends and deletes come back as a PendingAction that only
// Confirm can carry out.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hal9000y/mail-assistant/internal/gservice"
	"github.com/hal9000y/mail-assistant/internal/llm"
)

// Mailbox is the subset of the Gmail gateway the assistant needs.
type Mailbox interface {
	ListMessages(ctx context.Context, maxResults int64, labelID string) ([]gservice.MessageSummary, error)
	GetMessage(ctx context.Context, id string) (*gservice.Message, error)
	TrashMessage(ctx context.Context, id string) error
	SendReply(ctx context.Context, id, body string) (string, error)
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Assistant struct {
	gen       Generator
	extractor *Extractor
}

func New(gen Generator) *Assistant {
	return &Assistant{
		gen:       gen,
		extractor: NewExtractor(gen),
	}
}

// ChatRequest is one incoming chat turn.
type ChatRequest struct {
	Message string         `json:"message"`
	Action  *ActionPayload `json:"action,omitempty"`
}

// Chat decodes the request into a Turn and handles it. An action without a
// type counts as absent.
func (a *Assistant) Chat(ctx context.Context, mb Mailbox, req ChatRequest) Response {
	if req.Action != nil && req.Action.Type != "" {
		turn, err := req.Action.Turn()
		if err != nil {
			log.Printf("action.Turn failed: %v", err)
			return Response{Reply: clarification}
		}
		return a.Handle(ctx, mb, turn)
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Response{Reply: "Please provide a message."}
	}

	return a.Handle(ctx, mb, ParseTurn(msg))
}

// Handle runs a decoded turn. Failures become a normal reply.
func (a *Assistant) Handle(ctx context.Context, mb Mailbox, turn Turn) Response {
	var (
		resp Response
		err  error
	)

	switch t := turn.(type) {
	case ConfirmRequest:
		return a.Confirm(ctx, mb, t)
	case Selection:
		resp, err = a.selection(ctx, mb, t)
	case CategoryPick:
		resp, err = a.categoryEmails(ctx, mb, t.LabelID)
	case ComposedReply:
		resp, err = a.composedReply(ctx, mb, t)
	case FreeText:
		in := a.extractor.Extract(ctx, t.Text)
		resp, err = a.Dispatch(ctx, mb, in, t.Text)
	default:
		return Response{Reply: clarification}
	}

	if err != nil {
		log.Printf("assistant.Handle failed: %v", err)
		return Response{Reply: userMessage(err)}
	}

	return resp
}

const apiDisabledText = `Gmail API is not enabled in your Google Cloud project. Please enable it by:
1. Go to https://console.cloud.google.com/apis/library/gmail.googleapis.com
2. Select your project (or create one if needed)
3. Click 'Enable'
4. Wait a few minutes for the changes to propagate
5. Try again`

// userMessage turns an error into text for the chat window.
func userMessage(err error) string {
	switch {
	case errors.Is(err, gservice.ErrAPIDisabled):
		return apiDisabledText
	case errors.Is(err, gservice.ErrInsufficientPermission):
		return "Your Google account has not granted the permissions this action needs. " +
			"Please log out and log back in, granting all requested permissions."
	case errors.Is(err, gservice.ErrNotFound):
		return "Email not found. It may have already been deleted or moved to trash."
	case errors.Is(err, llm.ErrNotConfigured):
		return "The AI model is not configured. Set GEMINI_API_KEY on the server and restart it."
	}

	return fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", err)
}
