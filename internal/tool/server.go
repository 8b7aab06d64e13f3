package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server exposing the assistant as tools.
func NewServer(a chatter, v verifier, newMailbox MailboxFactory) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "mail-assistant", Version: "v1.0.0"}, nil)
	h := &Handler{assistant: a, verifier: v, newMailbox: newMailbox}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat_message",
		Description: "Send one chat turn to the email assistant. Sending and deleting always come back as a pending action that must be confirmed with confirm_action",
	}, h.ChatMessage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "confirm_action",
		Description: "Confirm or cancel a pending send_reply or delete action returned by chat_message",
	}, h.ConfirmAction)

	return server
}
