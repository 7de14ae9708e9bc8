package mcp

import (
	"context"
	"log"
	"net/http"

	"babble-go/internal/config"
	"babble-go/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// BabbleServer exposes the babble service as MCP tools over streamable
// HTTP.
type BabbleServer struct {
	server        *mcp.Server
	babbleService *service.BabbleService
	config        *config.Config
	logger        *zap.Logger
	handler       *mcp.StreamableHTTPHandler
}

type BabbleParams struct {
	Start string `json:"start,omitempty" jsonschema:"optional text to babble-complete"`
}

type AskParams struct {
	Question string `json:"question" jsonschema:"the question to answer from the corpus, ending in a question mark"`
}

func NewBabbleServer(babbleService *service.BabbleService, cfg *config.Config, logger *zap.Logger) *BabbleServer {
	server := &BabbleServer{
		babbleService: babbleService,
		config:        cfg,
		logger:        logger,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "Babble",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "babble",
		Description: "Generate pseudo-random, locally grammatical text from the loaded corpus, optionally completing a given start phrase",
	}, server.handleBabble)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question by locating a similar phrase in the corpus and continuing from the following line",
	}, server.handleAsk)

	server.handler = mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	server.server = mcpServer
	return server
}

func (s *BabbleServer) handleBabble(ctx context.Context, req *mcp.CallToolRequest, args BabbleParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling babble tool call", zap.String("start", args.Start))

	text, err := s.babbleService.Babble(args.Start)
	if err != nil {
		s.logger.Error("Babble tool call failed", zap.Error(err))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Failed to babble: " + err.Error()}},
		}, nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func (s *BabbleServer) handleAsk(ctx context.Context, req *mcp.CallToolRequest, args AskParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling ask tool call", zap.String("question", args.Question))

	text, err := s.babbleService.Ask(args.Question)
	if err != nil {
		s.logger.Error("Ask tool call failed", zap.Error(err))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Failed to answer: " + err.Error()}},
		}, nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// Serve starts the MCP listener on its own port.
func (s *BabbleServer) Serve() {
	go func() {
		address := s.config.Mcp.GetAddress()
		log.Printf("MCP Server going to listen on %s", address)
		if err := http.ListenAndServe(address, s.handler); err != nil {
			log.Fatalf("MCP Server failed: %v", err)
		}
	}()
}
