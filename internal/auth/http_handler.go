package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

type flow interface {
	LoginURL() (string, error)
	Exchange(ctx context.Context, code, state string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, tok *oauth2.Token) (UserInfo, error)
}

type sessions interface {
	Issue(Session) (string, error)
	Verify(token string) (*Session, error)
}

// HTTPHandler serves /auth/login, /auth/callback and /auth/profile.
type HTTPHandler struct {
	flow        flow
	sessions    sessions
	frontendURL string
	mux         *http.ServeMux
}

func NewHTTPHandler(f flow, s sessions, frontendURL string) *HTTPHandler {
	h := &HTTPHandler{
		flow:        f,
		sessions:    s,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		mux:         http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /auth/login", h.login)
	h.mux.HandleFunc("GET /auth/callback", h.callback)
	h.mux.HandleFunc("GET /auth/profile", h.profile)

	return h
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *HTTPHandler) login(w http.ResponseWriter, r *http.Request) {
	u, err := h.flow.LoginURL()
	if err != nil {
		log.Println("h.flow.LoginURL failed", err)
		WriteError(w, http.StatusInternalServerError, "Authentication error: "+err.Error())
		return
	}

	http.Redirect(w, r, u, http.StatusTemporaryRedirect)
}

func (h *HTTPHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		log.Println("OAuth error", e)
		h.loginError(w, r, e)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.loginError(w, r, "no_code")
		return
	}

	tok, err := h.flow.Exchange(r.Context(), code, q.Get("state"))
	if errors.Is(err, ErrInvalidState) {
		h.loginError(w, r, "invalid_state")
		return
	}
	if err != nil {
		log.Println("h.flow.Exchange failed", err)
		h.loginError(w, r, "callback_error")
		return
	}
	if tok.AccessToken == "" {
		h.loginError(w, r, "no_credentials")
		return
	}

	info, err := h.flow.UserInfo(r.Context(), tok)
	if err != nil {
		log.Println("h.flow.UserInfo failed", err)
	}

	token, err := h.sessions.Issue(Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		UserInfo:     info,
	})
	if err != nil {
		log.Println("h.sessions.Issue failed", err)
		h.loginError(w, r, "callback_error")
		return
	}

	http.Redirect(w, r, h.frontendURL+"/dashboard?token="+url.QueryEscape(token), http.StatusTemporaryRedirect)
}

func (h *HTTPHandler) loginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.frontendURL+"/login?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}

func (h *HTTPHandler) profile(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Verify(BearerToken(r))
	if err != nil {
		log.Println("h.sessions.Verify failed", err)
		WriteError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, sess.UserInfo)
}

// BearerToken returns the Authorization header without its Bearer prefix.
func BearerToken(r *http.Request) string {
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("json.NewEncoder.Encode failed", err)
	}
}

// WriteError writes {"detail": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"detail": msg})
}
