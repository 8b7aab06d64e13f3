// Package gservice is the Gmail gateway: list, fetch, trash and reply, one
// authenticated service per call.
package gservice

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUserID = "me"

type htmlConverter interface {
	HTML2Text(raw []byte) (string, error)
}

// Gmail talks to the Gmail API on behalf of a single access token. It keeps no
// state between calls.
type Gmail struct {
	ts   oauth2.TokenSource
	conv htmlConverter
	opts []option.ClientOption
}

// NewGmail creates a gateway for the given token source. Extra client options
// are appended after the token source, so an option.WithHTTPClient overrides it.
func NewGmail(ts oauth2.TokenSource, conv htmlConverter, opts ...option.ClientOption) *Gmail {
	return &Gmail{
		ts:   ts,
		conv: conv,
		opts: opts,
	}
}

// NewGmailForToken is a shortcut for a bare access token taken from a session.
func NewGmailForToken(accessToken string, conv htmlConverter, opts ...option.ClientOption) *Gmail {
	return NewGmail(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}), conv, opts...)
}

func (m *Gmail) newSvc(ctx context.Context) (*gmail.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(m.ts)}, m.opts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}
