package tool_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-assistant/internal/assistant"
	"github.com/hal9000y/mail-assistant/internal/auth"
	"github.com/hal9000y/mail-assistant/internal/format"
	"github.com/hal9000y/mail-assistant/internal/gservice"
	"github.com/hal9000y/mail-assistant/internal/llm"
	"github.com/hal9000y/mail-assistant/internal/tool"
)

// TestIntegrationReadOnlyChat drives a listing and a read against a live
// mailbox. It never confirms an action, so nothing is sent or trashed.
func TestIntegrationReadOnlyChat(t *testing.T) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			t.Logf("Warning: could not load env file %s: %v", envFile, err)
		}
	}

	accessToken := os.Getenv("GMAIL_ACCESS_TOKEN")
	if accessToken == "" {
		t.Skip("Skipping integration test: GMAIL_ACCESS_TOKEN env var must be set")
	}

	sessions := auth.NewSessions("integration")
	token, err := sessions.Issue(auth.Session{AccessToken: accessToken})
	require.NoError(t, err)

	gen := llm.New(llm.Config{APIKey: os.Getenv("GEMINI_API_KEY")})
	conv := &format.Converter{}
	server := tool.NewServer(assistant.New(gen), sessions, func(at string) assistant.Mailbox {
		return gservice.NewGmailForToken(at, conv)
	})

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer clientSession.Close()

	listing := chat(ctx, t, clientSession, tool.ChatMessageRequest{SessionToken: token, Message: "view & read"})
	t.Logf("Listing reply: %s", listing.Reply)
	if len(listing.Emails) == 0 {
		t.Skip("Mailbox is empty")
	}
	require.True(t, listing.ShowEmailList)

	first := listing.Emails[0]
	read := chat(ctx, t, clientSession, tool.ChatMessageRequest{
		SessionToken: token,
		Action:       &assistant.ActionPayload{Type: assistant.PayloadSelection, EmailID: first.ID, ActionType: "read"},
	})
	require.NotNil(t, read.EmailContent)
	t.Logf("Read %s: %q, %d body chars", first.ID, read.EmailContent.Subject, len(read.EmailContent.Body))
}

func chat(ctx context.Context, t *testing.T, cs *mcp.ClientSession, req tool.ChatMessageRequest) assistant.Response {
	t.Helper()

	result, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "chat_message", Arguments: req})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp assistant.Response
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &resp))

	return resp
}
