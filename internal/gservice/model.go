package gservice

// MessageSummary identifies a mailbox item without its body.
type MessageSummary struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

// Message is a fully fetched message with a decoded plain-text body.
type Message struct {
	ID         string `json:"id"`
	ThreadID   string `json:"thread_id"`
	Subject    string `json:"subject"`
	From       string `json:"from"`
	To         string `json:"to"`
	Date       string `json:"date"`
	Body       string `json:"body"`
	Snippet    string `json:"snippet"`
	MessageID  string `json:"-"`
	References string `json:"-"`
}

// Summary narrows a full message down to its listing fields.
func (m *Message) Summary() MessageSummary {
	return MessageSummary{
		ID:      m.ID,
		Subject: m.Subject,
		From:    m.From,
		Snippet: m.Snippet,
		Date:    m.Date,
	}
}

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
)
