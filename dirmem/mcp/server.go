package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
	"go.lsp.dev/jsonrpc2"
)

// ProtocolVersion is the MCP revision answered when the client names none.
const ProtocolVersion = "2024-11-05"

// MCP method names handled by the server.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodCancelled   = "notifications/cancelled"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// ServerInfo identifies the server during the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the payload of a tools/call response.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// Server answers MCP requests with the tools of a registry. Requests are
// handled one at a time in arrival order.
type Server struct {
	registry *Registry
	info     ServerInfo
	logger   zerolog.Logger
}

// NewServer creates a Server
func NewServer(registry *Registry, info ServerInfo, logger zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		info:     info,
		logger:   logger,
	}
}

// Serve runs the server over newline-delimited JSON-RPC on r and w until r
// is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	conn := jsonrpc2.NewConn(NewLineStream(r, w, s.logger))
	conn.Go(ctx, s.Handle)

	s.logger.Info().Str("server", s.info.Name).Int("tools", s.registry.Count()).Msg("serving")

	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.Done():
	}

	if err := conn.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("connection failed: %w", err)
	}
	s.logger.Info().Msg("input closed, shutting down")
	return nil
}

// Handle is the jsonrpc2.Handler for MCP methods. It only returns the
// error of sending the reply.
func (s *Server) Handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case MethodInitialize:
		return reply(ctx, s.initialize(req.Params()), nil)

	case MethodInitialized, MethodCancelled:
		return reply(ctx, nil, nil)

	case MethodPing:
		return reply(ctx, map[string]any{}, nil)

	case MethodToolsList:
		tools := s.registry.List()
		described := make([]map[string]any, len(tools))
		for i, t := range tools {
			described[i] = describeTool(t)
		}
		return reply(ctx, map[string]any{"tools": described}, nil)

	case MethodToolsCall:
		var params struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error()))
		}
		tool, ok := s.registry.Get(params.Name)
		if !ok {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, "unknown tool: "+params.Name))
		}
		return reply(ctx, s.CallTool(ctx, tool, params.Arguments), nil)

	default:
		s.logger.Debug().Str("method", req.Method()).Msg("method not found")
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, "method not found: "+req.Method()))
	}
}

func (s *Server) initialize(params json.RawMessage) map[string]any {
	var request struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	// Clients that send no usable version get ours.
	_ = json.Unmarshal(params, &request)

	version := request.ProtocolVersion
	if version == "" {
		version = ProtocolVersion
	}
	return map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": s.info,
	}
}

// CallTool executes tool and renders its outcome. Errors and panics become
// structured failure results; the server keeps serving either way.
func (s *Server) CallTool(ctx context.Context, tool Tool, arguments json.RawMessage) ToolResult {
	start := time.Now()
	logger := s.logger.With().Str("tool", tool.Name()).Logger()

	var (
		value any
		err   error
		pc    panics.Catcher
	)
	pc.Try(func() {
		value, err = tool.Execute(ctx, arguments)
	})
	if recovered := pc.Recovered(); recovered != nil {
		err = fmt.Errorf("%w: tool %s panicked: %w", common.ErrIO, tool.Name(), recovered.AsError())
		logger.Error().Str("stack", string(recovered.Stack)).Err(err).Msg("tool panicked")
	}

	if err != nil {
		logger.Warn().Err(err).Str("code", common.Code(err)).Dur("duration", time.Since(start)).Msg("tool failed")
		return textResult(errorResult(err), true)
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("tool completed")
	return textResult(value, false)
}

func textResult(value any, isError bool) ToolResult {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return textResult(errorResult(fmt.Errorf("%w: encode result: %w", common.ErrIO, err)), true)
	}
	return ToolResult{
		Content: []Content{{Type: "text", Text: string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))}},
		IsError: isError,
	}
}
