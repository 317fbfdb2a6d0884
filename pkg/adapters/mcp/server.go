package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/runner"
)

const intentsURI = "switchboard://intents"

// DispatchResponse is the structured result of the dispatch_message tool.
type DispatchResponse struct {
	Address    string  `json:"address,omitempty" jsonschema_description:"Intent address the message resolved to"`
	Target     string  `json:"target,omitempty" jsonschema_description:"Final address after following aliases"`
	Action     string  `json:"action,omitempty" jsonschema_description:"Action that handled the message"`
	Source     string  `json:"source,omitempty" jsonschema_description:"How the address was chosen (literal, classifier, auto_descend, fallback)"`
	Confidence float64 `json:"confidence" jsonschema_description:"Classifier confidence of the decision"`
	Sentiment  int     `json:"sentiment" jsonschema_description:"Lexicon sentiment score of the message (negative is hostile)"`
	Executed   bool    `json:"executed" jsonschema_description:"Whether a bound action ran"`
	Output     string  `json:"output,omitempty" jsonschema_description:"Action output rendered as text"`
	Context    string  `json:"context,omitempty" jsonschema_description:"Sender context after the dispatch"`
	Dropped    bool    `json:"dropped,omitempty" jsonschema_description:"Whether the message was dropped by a runtime error"`
	Error      string  `json:"error,omitempty" jsonschema_description:"Action or runtime error, if any"`
}

// DispatchArgs are the arguments of the dispatch_message tool.
type DispatchArgs struct {
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	Username string `json:"username,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// SenderArgs are the arguments of the per-sender tools.
type SenderArgs struct {
	Sender string `json:"sender"`
}

// Router defines the part of *switchboard.Router exposed to MCP clients.
type Router interface {
	Dispatch(ctx context.Context, msg domain.Message) *domain.Result
	Inspect() []domain.IntentNode
	Conversation(ctx context.Context, sender string) (domain.Conversation, error)
	Forget(ctx context.Context, sender string) error
	Ready() bool
}

var _ Router = (*switchboard.Router)(nil)

// Server wraps a Router and exposes it as an MCP Server.
type Server struct {
	router    Router
	sanitizer runner.Sanitizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize sets the byte limit of message text.
func WithMaxInputSize(size int) Option {
	return func(s *Server) {
		s.sanitizer.MaxSize = size
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(router Router, opts ...Option) *Server {
	s := &Server{
		router: router,
		logger: logging.NewNop(),
	}
	s.mcpServer = server.NewMCPServer(
		"switchboard-mcp",
		strings.TrimSpace(switchboard.Version),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
	)
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: dispatch_message
	dispatchTool := mcp.NewTool("dispatch_message",
		mcp.WithDescription("Route a text message from a sender to the matching intent and run its action."),
		mcp.WithString("sender", mcp.Required(), mcp.Description("Stable sender ID; conversation context is kept per sender")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
		mcp.WithString("username", mcp.Description("Sender username (optional)")),
		mcp.WithString("channel", mcp.Description("Originating channel (optional, defaults to mcp)")),
		mcp.WithOutputSchema[DispatchResponse](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: list_intents
	s.mcpServer.AddTool(mcp.NewTool("list_intents",
		mcp.WithDescription("List every registered intent node."),
	), s.handleListIntents)

	// TOOL: get_conversation
	s.mcpServer.AddTool(mcp.NewTool("get_conversation",
		mcp.WithDescription("Show the current conversation context of a sender."),
		mcp.WithString("sender", mcp.Required(), mcp.Description("Sender ID")),
	), mcp.NewTypedToolHandler(s.handleGetConversation))

	// TOOL: reset_conversation
	s.mcpServer.AddTool(mcp.NewTool("reset_conversation",
		mcp.WithDescription("Forget a sender, moving it back to the root of the intent tree."),
		mcp.WithString("sender", mcp.Required(), mcp.Description("Sender ID")),
	), mcp.NewTypedToolHandler(s.handleResetConversation))
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (DispatchResponse, error) {
	if strings.TrimSpace(args.Sender) == "" {
		return DispatchResponse{}, errors.New("sender is required")
	}
	if !s.router.Ready() {
		return DispatchResponse{}, errors.New("router is not trained")
	}

	clean, err := s.sanitizer.Clean(args.Text)
	if err != nil {
		s.logger.Warn("MCP Dispatch: input rejected", "err", err, "size", len(args.Text))
		return DispatchResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	msg := domain.NewMessage(args.Sender, clean)
	msg.Sender.Username = args.Username
	msg.Channel = args.Channel
	if msg.Channel == "" {
		msg.Channel = "mcp"
	}

	res := s.router.Dispatch(ctx, msg)
	return toResponse(res), nil
}

func toResponse(res *domain.Result) DispatchResponse {
	out := DispatchResponse{
		Address:    res.Address,
		Target:     res.Target,
		Action:     res.Action,
		Source:     string(res.Source),
		Confidence: res.Confidence,
		Executed:   res.Executed,
		Context:    res.Context,
		Dropped:    res.Dropped,
		Error:      res.Error,
	}
	if res.Sentiment != nil {
		out.Sentiment = res.Sentiment.Score
	}
	switch v := res.Output.(type) {
	case nil:
	case string:
		out.Output = v
	case fmt.Stringer:
		out.Output = v.String()
	default:
		if b, err := json.Marshal(v); err == nil {
			out.Output = string(b)
		} else {
			out.Output = fmt.Sprint(v)
		}
	}
	return out
}

func (s *Server) handleListIntents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.router.Inspect())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest, args SenderArgs) (*mcp.CallToolResult, error) {
	if args.Sender == "" {
		return mcp.NewToolResultError("sender is required"), nil
	}
	conv, err := s.router.Conversation(ctx, args.Sender)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conversation failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(conv)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleResetConversation(ctx context.Context, request mcp.CallToolRequest, args SenderArgs) (*mcp.CallToolResult, error) {
	if args.Sender == "" {
		return mcp.NewToolResultError("sender is required"), nil
	}
	if err := s.router.Forget(ctx, args.Sender); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("conversation of %s reset", args.Sender)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: switchboard://intents
	s.mcpServer.AddResource(mcp.NewResource(intentsURI, "Intent Tree",
		mcp.WithResourceDescription("Every registered intent node in address order"),
		mcp.WithMIMEType("application/json"),
	), s.readIntents)
}

func (s *Server) readIntents(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.router.Inspect())
	if err != nil {
		return nil, fmt.Errorf("failed to inspect intents: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      intentsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
