package assistant

import (
	"fmt"
	"strings"

	"github.com/hal9000y/mail-assistant/internal/gservice"
)

const (
	summaryBodyLimit = 1000
	digestBodyLimit  = 500
	groupBodyLimit   = 300
	previewLimit     = 500
)

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func intentPrompt(message string) string {
	return fmt.Sprintf(`Analyze this user message and determine their intent. Return ONLY a JSON object with these fields:
- intent: one of ["read", "summarize", "reply", "delete", "digest", "group", "show_categories", "greeting", "help", "unknown"]
- parameters: object with fields like email_number, sender, subject_keyword, num_emails
- confidence: number between 0 and 1

User message: %q

Return ONLY valid JSON, no other text.`, message)
}

func summaryPrompt(m *gservice.Message) string {
	return fmt.Sprintf(`You are an email assistant. Summarize this email in 3-4 sentences, highlighting:
1. The main purpose or topic
2. Key points or action items
3. Any important details or deadlines

Email:
From: %s
Subject: %s
Body: %s

Provide a concise, professional summary:`, m.From, m.Subject, truncate(m.Body, summaryBodyLimit))
}

func replyPrompt(m *gservice.Message, request string) string {
	return fmt.Sprintf(`You are an email assistant helping to draft a professional reply.

Original Email:
From: %s
Subject: %s
Body: %s

User's request: %q

Generate a professional, context-aware reply email. The reply should be:
- Clear and concise
- Professional in tone
- Address the points raised in the original email
- Ready to send (complete email body)

Return ONLY the reply text, no additional formatting or explanations.`, m.From, m.Subject, m.Body, request)
}

func emailsBlock(list []*gservice.Message, bodyLimit int) string {
	parts := make([]string, 0, len(list))
	for i, m := range list {
		parts = append(parts, fmt.Sprintf("Email %d:\nFrom: %s\nSubject: %s\nBody: %s",
			i+1, m.From, m.Subject, truncate(m.Body, bodyLimit)))
	}
	return strings.Join(parts, "\n\n")
}

func digestPrompt(list []*gservice.Message) string {
	return `You are an email assistant creating a daily digest. Analyze these emails and create a digest that includes:

1. **Key Emails Summary**: Brief overview of the most important emails
2. **Action Items**: List any tasks, deadlines, or follow-ups needed
3. **Priority Items**: Highlight urgent or important emails
4. **Suggested Actions**: Recommendations for what the user should do

Here are today's emails:

` + emailsBlock(list, digestBodyLimit) + `

Create a well-formatted, professional daily digest.`
}

func groupPrompt(list []*gservice.Message) string {
	return `You are an email assistant. Categorize these emails into groups like:
- Work
- Personal
- Promotions
- Urgent
- Newsletters
- Social

For each email, provide:
1. Category
2. Brief reason for categorization

Emails:
` + emailsBlock(list, groupBodyLimit) + `

Return a structured categorization with each email's number, category, and reason.`
}

func unknownPrompt(message string) string {
	return fmt.Sprintf(`The user said: %q

They're using an email assistant. Determine if they want to:
- Read/view emails
- Summarize emails
- Reply to an email
- Delete an email
- Get a daily digest
- Group/categorize emails
- Or just general help

Provide a helpful response that guides them on what they can do.`, message)
}

const helpText = `I'm your AI email assistant! Here's what I can do:

**Read Emails**
   - "Show me my last 5 emails"
   - "Read email 2"

**Summarize**
   - "Summarize my last 5 emails"
   - "Summarize the email from John"

**Generate Replies**
   - "Reply to email 1"
   - "Reply to the latest email from John"
   - "Reply to the email about invoices"

**Delete Emails**
   - "Delete email 2"
   - "Delete the email from john@example.com"
   - "Delete email about invoices"

**Daily Digest**
   - "Give me today's digest"

**Categories**
   - "Categorize mails" to browse by label
   - "Group my emails" for a smart grouping

Just use natural language. I'll always ask before sending or deleting anything.`

const fallbackMenu = `I'm not sure what you'd like to do. You can:
- Read your emails
- Summarize emails
- Generate replies
- Delete emails
- Get a daily digest
- Group your emails

Just tell me what you need!`

const clarification = "I couldn't determine what action to perform. Please try clicking the email again."

// Greeting is the opening message for a signed-in user.
func Greeting(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello %s!\n\nI'm your AI email assistant. How can I help you manage your emails today?\n\nChoose an option below to get started:", name)
}
