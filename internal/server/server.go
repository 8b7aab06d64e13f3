// Package server wires the HTTP surface: sign-in, chat, read-only Gmail
// pass-through and the MCP endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/rs/cors"

	"github.com/hal9000y/mail-assistant/internal/assistant"
	"github.com/hal9000y/mail-assistant/internal/auth"
	"github.com/hal9000y/mail-assistant/internal/gservice"
)

const latestEmails = 5

type chatter interface {
	Chat(ctx context.Context, mb assistant.Mailbox, req assistant.ChatRequest) assistant.Response
	Confirm(ctx context.Context, mb assistant.Mailbox, req assistant.ConfirmRequest) assistant.Response
}

type verifier interface {
	Verify(token string) (*auth.Session, error)
}

type Options struct {
	Assistant   chatter
	Sessions    verifier
	NewMailbox  func(accessToken string) assistant.Mailbox
	Auth        http.Handler
	MCP         http.Handler
	CORSOrigins []string
}

type Server struct {
	assistant  chatter
	sessions   verifier
	newMailbox func(accessToken string) assistant.Mailbox
}

// New returns the root handler with CORS and request logging applied.
func New(opts Options) http.Handler {
	s := &Server{
		assistant:  opts.Assistant,
		sessions:   opts.Sessions,
		newMailbox: opts.NewMailbox,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.health)
	mux.Handle("/auth/", opts.Auth)
	mux.Handle("/mcp", opts.MCP)

	mux.HandleFunc("GET /chatbot/greeting", s.authenticated(s.greeting))
	mux.HandleFunc("POST /chatbot/message", s.authenticated(s.message))
	mux.HandleFunc("POST /chatbot/confirm-action", s.authenticated(s.confirmAction))

	mux.HandleFunc("GET /gmail/latest", s.authenticated(s.latest))
	mux.HandleFunc("GET /gmail/email/{id}", s.authenticated(s.email))

	return withRequestID(newCORS(opts.CORSOrigins).Handler(mux))
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !slices.Contains(origins, "*"),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	auth.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *auth.Session)

// authenticated rejects requests without a valid session token with 401.
func (s *Server) authenticated(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			auth.WriteError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}

		sess, err := s.sessions.Verify(token)
		if err != nil {
			log.Println("s.sessions.Verify failed", err)
			auth.WriteError(w, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			return
		}

		next(w, r, sess)
	}
}

type greetingResponse struct {
	Reply    string        `json:"reply"`
	UserInfo auth.UserInfo `json:"user_info"`
}

func (s *Server) greeting(w http.ResponseWriter, _ *http.Request, sess *auth.Session) {
	auth.WriteJSON(w, http.StatusOK, greetingResponse{
		Reply:    assistant.Greeting(sess.UserInfo.DisplayName()),
		UserInfo: sess.UserInfo,
	})
}

func (s *Server) message(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	var req assistant.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	auth.WriteJSON(w, http.StatusOK, s.assistant.Chat(r.Context(), s.newMailbox(sess.AccessToken), req))
}

func (s *Server) confirmAction(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	var req assistant.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	auth.WriteJSON(w, http.StatusOK, s.assistant.Confirm(r.Context(), s.newMailbox(sess.AccessToken), req))
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	list, err := s.newMailbox(sess.AccessToken).ListMessages(r.Context(), latestEmails, "")
	if err != nil {
		log.Println("mailbox.ListMessages failed", err)
		auth.WriteError(w, statusFor(err), fmt.Sprintf("Failed to fetch emails: %v", err))
		return
	}

	if list == nil {
		list = []gservice.MessageSummary{}
	}
	auth.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) email(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	id := r.PathValue("id")

	msg, err := s.newMailbox(sess.AccessToken).GetMessage(r.Context(), id)
	if err != nil {
		log.Println("mailbox.GetMessage failed", err)
		auth.WriteError(w, statusFor(err), fmt.Sprintf("Failed to fetch email: %v", err))
		return
	}

	auth.WriteJSON(w, http.StatusOK, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gservice.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gservice.ErrInsufficientPermission), errors.Is(err, gservice.ErrAPIDisabled):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
