package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hal9000y/mail-assistant/internal/gservice"
)

var (
	ordinalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bemail\s+#?(\d+)\b`),
		regexp.MustCompile(`#(\d+)`),
		regexp.MustCompile(`(?i)\bnumber\s+(\d+)\b`),
		regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)\s+email\b`),
	}

	senderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfrom\s+([^\s@]+@[^\s]+)`),
		regexp.MustCompile(`(?i:\b(?:from|by|sender)\s+)([A-Za-z][A-Za-z'-]*(?:\s+[A-Z][a-z]+)?)`),
	}

	subjectPattern = regexp.MustCompile(`(?i)\b(?:subject|about|regarding)\s+["']?([^"']+)["']?`)
)

// Words that follow "from"/"by" without naming anyone.
var notSenders = map[string]bool{
	"the": true, "my": true, "me": true, "a": true, "an": true, "this": true,
	"that": true, "today": true, "yesterday": true, "inbox": true, "date": true,
}

// target holds the signals a message carries about which email it refers to.
type target struct {
	ordinal int
	sender  string
	subject string
}

func (t target) empty() bool {
	return t.ordinal == 0 && t.sender == "" && t.subject == ""
}

func parseTarget(msg string) target {
	var t target

	for _, re := range ordinalPatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				t.ordinal = n
				break
			}
		}
	}

	for _, re := range senderPatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			s := strings.Trim(m[1], ".,;:!?\"'")
			if s != "" && !notSenders[strings.ToLower(s)] {
				t.sender = s
				break
			}
		}
	}

	if m := subjectPattern.FindStringSubmatch(msg); m != nil {
		t.subject = strings.TrimSpace(strings.Trim(m[1], ".,;:!? "))
	}

	return t
}

// window is how many recent emails to list before resolving. An ordinal past
// base widens it so a number read off a longer batch listing still resolves.
func (t target) window(base int) int64 {
	if t.ordinal > base {
		return int64(min(t.ordinal, maxNumEmails))
	}
	return int64(base)
}

// resolve picks the email a target refers to: ordinal first, then sender,
// then subject keyword, then the most recent message. list must be non-empty.
func (t target) resolve(list []gservice.MessageSummary) gservice.MessageSummary {
	if t.ordinal >= 1 && t.ordinal <= len(list) {
		return list[t.ordinal-1]
	}

	if t.sender != "" {
		needle := strings.ToLower(t.sender)
		for _, m := range list {
			if strings.Contains(strings.ToLower(m.From), needle) {
				return m
			}
		}
	}

	if t.subject != "" {
		needle := strings.ToLower(t.subject)
		for _, m := range list {
			if strings.Contains(strings.ToLower(m.Subject), needle) {
				return m
			}
		}
	}

	return list[0]
}
