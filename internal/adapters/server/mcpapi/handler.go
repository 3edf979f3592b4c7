// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/zukai/internal/adapters/server/common"
	"github.com/hylla/zukai/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// agentActorID names mutations made through MCP when the caller sends no actor_id.
const agentActorID = "mcp"

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the logic, purpose and history tools.
func NewHandler(cfg Config, service common.Service) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("diagram service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerLogicTools(mcpSrv, service)
	registerPurposeTools(mcpSrv, service)
	registerHistoryTool(mcpSrv, service)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "zukai"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// actorOptions are the attribution arguments shared by mutating tools.
func actorOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("actor_id", mcp.Description("Caller identity recorded in history (defaults to mcp)")),
		mcp.WithString("actor_type", mcp.Description("user|agent|system (defaults to agent)"), mcp.Enum("user", "agent", "system")),
	}
}

// newTool builds one tool definition with optional actor arguments appended.
func newTool(name string, mutating bool, opts ...mcp.ToolOption) mcp.Tool {
	if mutating {
		opts = append(opts, actorOptions()...)
	}
	return mcp.NewTool(name, opts...)
}

// bindTool adapts one typed service call into an MCP tool handler.
// Arguments bind onto the request type; the result is returned as JSON.
func bindTool[Req, Res any](name string, call func(context.Context, Req) (Res, error), check func(Req) error) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args Req
		if err := req.BindArguments(&args); err != nil {
			return invalidRequestToolResult(err), nil
		}
		if check != nil {
			if err := check(args); err != nil {
				return invalidRequestToolResult(err), nil
			}
		}
		out, err := call(agentContext(ctx), args)
		if err != nil {
			return toolResultFromError(err), nil
		}
		result, err := mcp.NewToolResultJSON(out)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return result, nil
	}
}

// readTool adapts one argument-free read into an MCP tool handler.
func readTool[Res any](name string, call func(context.Context) (Res, error)) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := call(ctx)
		if err != nil {
			return toolResultFromError(err), nil
		}
		result, err := mcp.NewToolResultJSON(out)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return result, nil
	}
}

// imageTool adapts one image export into an MCP image result.
func imageTool(call func(context.Context, common.ExportImageRequest) (common.ImageResult, error)) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		img, err := call(ctx, common.ExportImageRequest{Format: req.GetString("format", "")})
		if err != nil {
			return toolResultFromError(err), nil
		}
		caption := img.FileName
		if img.FellBack {
			caption += " (png failed, exported svg: " + img.FallbackReason + ")"
		}
		return mcp.NewToolResultImage(caption, base64.StdEncoding.EncodeToString(img.Data), img.ContentType), nil
	}
}

// agentContext attributes MCP mutations to an agent unless arguments override it.
func agentContext(ctx context.Context) context.Context {
	return common.WithDefaultActor(ctx, agentActorID, domain.ActorTypeAgent)
}

// requireFields reports the first blank required argument.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("required argument %q not found", pairs[i])
		}
	}
	return nil
}

// unwrapDocument accepts a document passed either as a JSON object or as a JSON string.
func unwrapDocument(in common.ImportRequest) (common.ImportRequest, error) {
	raw := bytes.TrimSpace(in.Document)
	if len(raw) == 0 || string(raw) == "null" {
		return in, fmt.Errorf(`required argument "document" not found`)
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return in, fmt.Errorf("decode document string: %w", err)
		}
		raw = []byte(text)
	}
	if !json.Valid(raw) {
		return in, fmt.Errorf("document is not valid json")
	}
	in.Document = raw
	return in, nil
}

// importTool binds an import request and unwraps its document argument.
func importTool[Res any](name string, call func(context.Context, common.ImportRequest) (Res, error)) mcpserver.ToolHandlerFunc {
	return bindTool(name, func(ctx context.Context, in common.ImportRequest) (Res, error) {
		in, err := unwrapDocument(in)
		if err != nil {
			var zero Res
			return zero, fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
		}
		return call(ctx, in)
	}, nil)
}

// registerLogicTools registers the `zukai.logic.*` tools.
func registerLogicTools(srv *mcpserver.MCPServer, svc common.LogicService) {
	categories := make([]string, 0, 6)
	for _, c := range domain.Categories() {
		categories = append(categories, string(c))
	}

	srv.AddTool(
		newTool("zukai.logic.state", false,
			mcp.WithDescription("Return every logic-model card and connection."),
		),
		readTool("zukai.logic.state", svc.LogicState),
	)
	srv.AddTool(
		newTool("zukai.logic.add_item", true,
			mcp.WithDescription("Add one card to a logic-model column."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Card text (1-30 characters)")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Column"), mcp.Enum(categories...)),
		),
		bindTool("zukai.logic.add_item", svc.AddItem, func(in common.AddItemRequest) error {
			return requireFields("text", in.Text, "category", in.Category)
		}),
	)
	srv.AddTool(
		newTool("zukai.logic.update_item", true,
			mcp.WithDescription("Edit one card. Changing its column removes its connections."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
			mcp.WithString("text", mcp.Required(), mcp.Description("New card text")),
			mcp.WithString("category", mcp.Description("New column (defaults to the current one)"), mcp.Enum(categories...)),
		),
		bindTool("zukai.logic.update_item", svc.UpdateItem, func(in common.UpdateItemRequest) error {
			return requireFields("id", in.ID, "text", in.Text)
		}),
	)
	srv.AddTool(
		newTool("zukai.logic.remove_item", true,
			mcp.WithDescription("Delete one card and every connection touching it."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		),
		bindTool("zukai.logic.remove_item", svc.RemoveItem, func(in common.DeleteRequest) error {
			return requireFields("id", in.ID)
		}),
	)
	srv.AddTool(
		newTool("zukai.logic.connect", true,
			mcp.WithDescription("Draw an arrow from a card to a card in the next column."),
			mcp.WithString("source", mcp.Required(), mcp.Description("Source card id")),
			mcp.WithString("target", mcp.Required(), mcp.Description("Target card id")),
		),
		bindTool("zukai.logic.connect", svc.Connect, func(in common.ConnectRequest) error {
			return requireFields("source", in.Source, "target", in.Target)
		}),
	)
	srv.AddTool(
		newTool("zukai.logic.disconnect", true,
			mcp.WithDescription("Delete one arrow by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Connection id")),
		),
		bindTool("zukai.logic.disconnect", svc.Disconnect, func(in common.DeleteRequest) error {
			return requireFields("id", in.ID)
		}),
	)
	srv.AddTool(
		newTool("zukai.logic.reset", true,
			mcp.WithDescription("Clear every card and connection."),
		),
		bindTool("zukai.logic.reset", svc.ResetLogic, nil),
	)
	srv.AddTool(
		newTool("zukai.logic.import", true,
			mcp.WithDescription("Replace the logic model from an exported document."),
			mcp.WithObject("document", mcp.Required(), mcp.Description("Exported logic document (enveloped or bare)")),
		),
		importTool("zukai.logic.import", svc.ImportLogic),
	)
	srv.AddTool(
		newTool("zukai.logic.export", false,
			mcp.WithDescription("Return the logic model as an exportable document."),
		),
		readTool("zukai.logic.export", svc.ExportLogic),
	)
	srv.AddTool(
		newTool("zukai.logic.export_image", false,
			mcp.WithDescription("Render the logic board as an image."),
			mcp.WithString("format", mcp.Description("png or svg (defaults to png)"), mcp.Enum("png", "svg")),
		),
		imageTool(svc.ExportLogicImage),
	)
}

// registerHistoryTool registers the `zukai.history` tool.
func registerHistoryTool(srv *mcpserver.MCPServer, svc common.HistoryService) {
	srv.AddTool(
		mcp.NewTool(
			"zukai.history",
			mcp.WithDescription("List recent changes for one diagram, newest first."),
			mcp.WithString("diagram", mcp.Required(), mcp.Description("Diagram"), mcp.Enum("logic", "purpose")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			diagram, err := req.RequireString("diagram")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			rows, err := svc.History(ctx, diagram, req.GetInt("limit", 25))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"events": rows,
			})
			if err != nil {
				return nil, fmt.Errorf("encode history result: %w", err)
			}
			return result, nil
		},
	)
}

// invalidRequestToolResult formats argument errors with the invalid_request code.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrConflict):
		return mcp.NewToolResultError("conflict: " + err.Error())
	case errors.Is(err, common.ErrUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
