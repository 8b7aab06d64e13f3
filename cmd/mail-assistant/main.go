// Mail assistant serves the chat email assistant over HTTP and the Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-assistant/internal/assistant"
	"github.com/hal9000y/mail-assistant/internal/auth"
	"github.com/hal9000y/mail-assistant/internal/config"
	"github.com/hal9000y/mail-assistant/internal/format"
	"github.com/hal9000y/mail-assistant/internal/gservice"
	"github.com/hal9000y/mail-assistant/internal/llm"
	"github.com/hal9000y/mail-assistant/internal/server"
	"github.com/hal9000y/mail-assistant/internal/tool"
)

func main() {
	httpAddr := flag.String("http-addr", "", "HTTP server listen addr, overrides HTTP_ADDR")
	envFile := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Also serve MCP over stdio (disables stdout logging)")
	logFile := flag.String("log-file", "", "Path to log file, stdout when empty")

	flag.Parse()

	persistLogs := setupLogger(*enableStdio, *logFile)
	defer persistLogs()

	cfg := mustLoadConfig(*envFile)
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	flow := auth.NewFlow(auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI))
	sessions := auth.NewSessions(cfg.JWTSecret)

	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY is not set, intents fall back to keyword rules and generation is unavailable")
	}
	asst := assistant.New(llm.New(cfg.LLM()))

	conv := &format.Converter{}
	newMailbox := func(accessToken string) assistant.Mailbox {
		return gservice.NewGmailForToken(accessToken, conv)
	}

	mcpSrv := tool.NewServer(asst, sessions, newMailbox)

	srv := &http.Server{
		Handler: server.New(server.Options{
			Assistant:   asst,
			Sessions:    sessions,
			NewMailbox:  newMailbox,
			Auth:        auth.NewHTTPHandler(flow, sessions, cfg.FrontendURL),
			MCP:         mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return mcpSrv }, nil),
			CORSOrigins: cfg.Origins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Fatalln(fmt.Errorf("net.Listen failed: %w", err))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(mcpSrv)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.Println("Error http server", err)
	case err := <-errStdioCh:
		log.Println("Error stdio", err)
	case <-shutdown:
		log.Println("Shutdown signal received")
	}
}

func mustLoadConfig(envFile string) *config.Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Fatalln(fmt.Errorf("godotenv.Load failed: %w", err))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(fmt.Errorf("config.Load failed: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}

	return cfg
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errCh)
		log.Println("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errCh
		log.Println("Stdio transport stopped")
	}, errCh
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		log.Println("Starting http server on", ln.Addr().String())

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println(fmt.Errorf("srv.Shutdown failed: %w", err))
		}

		<-errCh
		log.Println("HTTP server stopped")
	}, errCh
}

// setupLogger keeps stdout free for the stdio transport.
func setupLogger(stdio bool, logFile string) func() {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalln(fmt.Errorf("os.OpenFile failed: %w", err))
		}
		log.SetOutput(f)

		return func() {
			if err := f.Close(); err != nil {
				log.Println(fmt.Errorf("f.Close failed: %w", err))
			}
		}
	}

	if stdio {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stdout)
	}

	return func() {}
}
