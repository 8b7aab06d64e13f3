package gservice

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// extractMessageBodies walks the MIME tree and returns the first text/plain and
// the first text/html body found.
func extractMessageBodies(payload *gmail.MessagePart) (textBody, htmlBody string) {
	textBody, htmlBody = extractBodyFromPart(payload)

	for _, part := range payload.Parts {
		if textBody != "" && htmlBody != "" {
			break
		}

		nestedText, nestedHTML := extractMessageBodies(part)
		if textBody == "" {
			textBody = nestedText
		}
		if htmlBody == "" {
			htmlBody = nestedHTML
		}
	}

	return textBody, htmlBody
}

func extractBodyFromPart(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body == nil || part.Body.Data == "" || part.Filename != "" {
		return "", ""
	}

	switch strings.ToLower(part.MimeType) {
	case "text/plain":
		return decodeBase64URL(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URL(part.Body.Data)
	default:
		return "", ""
	}
}

// decodeBase64URL decodes a Gmail body part. Gmail sends URL-safe base64, but
// some senders' parts carry the standard alphabet, so that is tried last.
func decodeBase64URL(data string) string {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded)
		}
	}
	return ""
}

func trimBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}
