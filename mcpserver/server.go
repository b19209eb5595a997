package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/missdeer/gemini-mcp-go/internal/ndjson"
)

// ToolHandler is the interface tool providers implement.
type ToolHandler interface {
	// Tools returns the tool definitions exposed by this handler.
	Tools() []ToolDefinition
	// HandleToolCall handles a tool invocation. Returning an *RPCError
	// surfaces it as a protocol-level error; any other error becomes a
	// generic internal error.
	HandleToolCall(ctx context.Context, name string, args json.RawMessage) (*ToolCallResult, error)
}

// Server speaks JSON-RPC 2.0 over newline-delimited JSON, typically on
// stdin/stdout. It serves requests sequentially; tool calls run under the
// Serve context.
type Server struct {
	handler ToolHandler
	name    string
	version string
}

// New creates a Server exposing the handler's tools.
func New(name, version string, handler ToolHandler) *Server {
	return &Server{name: name, version: version, handler: handler}
}

// Serve reads requests from in and writes responses to out until EOF,
// a transport error, or context cancellation.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := ndjson.NewReader(in)
	writer := ndjson.NewWriter(out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			resp := Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: codeParseError, Message: "parse error: " + err.Error()},
			}
			if err := writer.Write(resp); err != nil {
				return err
			}
			continue
		}

		resp, respond := s.dispatch(ctx, req)
		if !respond {
			continue
		}
		if err := writer.Write(resp); err != nil {
			return err
		}
	}
}

// dispatch routes one request. The second return value is false for
// notifications, which get no response.
func (s *Server) dispatch(ctx context.Context, req Request) (Response, bool) {
	isNotification := req.ID == nil

	var (
		result any
		rpcErr *RPCError
	)

	switch req.Method {
	case methodInitialize:
		result = InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: ServerCapabilities{
				Tools: &ToolsCapability{},
			},
			ServerInfo:   ServerInfo{Name: s.name, Version: s.version},
			Instructions: "This server provides a gemini tool for AI-driven tasks. Use the gemini tool to execute tasks via the Gemini CLI.",
		}

	case methodPing:
		result = struct{}{}

	case methodToolsList:
		result = ToolsListResult{Tools: s.handler.Tools()}

	case methodToolsCall:
		var params ToolsCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			rpcErr = invalidParams("invalid tools/call params: " + err.Error())
			break
		}
		callResult, err := s.handler.HandleToolCall(ctx, params.Name, params.Arguments)
		if err != nil {
			if !errors.As(err, &rpcErr) {
				rpcErr = internalError(err.Error())
			}
			break
		}
		result = callResult

	default:
		if isNotification {
			// Unknown notifications (including notifications/initialized)
			// are acknowledged by silence per JSON-RPC.
			if req.Method != methodInitialized {
				slog.Debug("ignoring unknown notification", "method", req.Method)
			}
			return Response{}, false
		}
		rpcErr = &RPCError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	}

	if isNotification {
		return Response{}, false
	}

	resp := Response{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	return resp, true
}
