package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/hal9000y/mail-assistant/internal/gservice"
)

var (
	exactAffirmations = map[string]bool{"yes": true, "confirm": true, "send": true, "y": true}
	affirmWord        = regexp.MustCompile(`\b(?:yes|confirm)\b`)
	negationWord      = regexp.MustCompile(`\b(?:no|not|don't|dont|cancel|never|nope|stop)\b`)
)

// Affirms reports whether answer approves a pending action. Anything that is
// not a clear yes counts as a no.
func Affirms(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if exactAffirmations[a] {
		return true
	}

	return affirmWord.MatchString(a) && !negationWord.MatchString(a)
}

// Confirm carries out a pending action when the user affirmed it. It is the
// only place that sends or trashes mail.
func (a *Assistant) Confirm(ctx context.Context, mb Mailbox, req ConfirmRequest) Response {
	if !Affirms(req.Confirmation) {
		return Response{Reply: "Action cancelled.", Status: StatusCancelled}
	}

	switch req.Action {
	case ActionSendReply:
		if req.EmailID == "" || strings.TrimSpace(req.ReplyText) == "" {
			return Response{Reply: "Missing email ID or reply text.", Status: StatusError}
		}

		id, err := mb.SendReply(ctx, req.EmailID, req.ReplyText)
		if err != nil {
			return confirmFailed(fmt.Errorf("mailbox.SendReply failed: %w", err))
		}

		return Response{
			Reply:  "Successfully sent your reply!",
			Status: StatusSuccess,
			Result: &ActionResult{MessageID: id, Message: "Reply sent"},
		}

	case ActionDelete:
		if req.EmailID == "" {
			return Response{Reply: "Missing email ID.", Status: StatusError}
		}

		subject := "email"
		if m, err := mb.GetMessage(ctx, req.EmailID); err != nil {
			log.Printf("mailbox.GetMessage %s failed: %v", req.EmailID, err)
		} else {
			subject = m.Subject
		}

		if err := mb.TrashMessage(ctx, req.EmailID); err != nil {
			return confirmFailed(fmt.Errorf("mailbox.TrashMessage failed: %w", err))
		}

		return Response{
			Reply:  fmt.Sprintf("Email moved to trash: '%s'. You can recover it from your Trash folder if needed.", subject),
			Status: StatusSuccess,
			Result: &ActionResult{Message: "Email moved to trash"},
		}
	}

	return Response{Reply: "Unknown action.", Status: StatusError}
}

func confirmFailed(err error) Response {
	log.Printf("assistant.Confirm failed: %v", err)

	reply := fmt.Sprintf("Failed to complete action: %v", err)
	if errors.Is(err, gservice.ErrAPIDisabled) ||
		errors.Is(err, gservice.ErrInsufficientPermission) ||
		errors.Is(err, gservice.ErrNotFound) {
		reply = userMessage(err)
	}

	return Response{Reply: reply, Status: StatusError}
}
