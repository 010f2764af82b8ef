package mcpserver

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Boswecw/cortex-local/internal/command"
	"github.com/Boswecw/cortex-local/internal/export"
	"github.com/Boswecw/cortex-local/internal/query"
)

// argsOf extracts the call's arguments as a plain map, matching the
// teacher's own choice not to reintroduce a reflection-based coercion layer
// for MCP tool arguments.
func argsOf(request mcplib.CallToolRequest) (map[string]interface{}, bool) {
	m, ok := request.Params.Arguments.(map[string]interface{})
	return m, ok
}

func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func intArg(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func floatArg(args map[string]interface{}, key string, def float32) float32 {
	if v, ok := args[key].(float64); ok {
		return float32(v)
	}
	return def
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func addSearchFilesTool(s *server.MCPServer, surface *command.Surface) {
	tool := mcplib.NewTool(
		"search_files",
		mcplib.WithDescription("Lexical full-text search over indexed files, with optional file-type/size/date filters."),
		mcplib.WithString("query", mcplib.Required(), mcplib.Description("search terms")),
		mcplib.WithString("file_type", mcplib.Description("restrict results to this file extension")),
		mcplib.WithNumber("limit", mcplib.Description("maximum results to return (default 50)")),
		mcplib.WithNumber("offset", mcplib.Description("result offset (default 0)")),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcplib.NewToolResultError("invalid arguments format"), nil
		}
		q, ok := stringArg(args, "query")
		if !ok || q == "" {
			return mcplib.NewToolResultError("query parameter is required"), nil
		}

		var filters *query.Filters
		if ft, ok := stringArg(args, "file_type"); ok && ft != "" {
			filters = &query.Filters{FileType: ft}
		}

		resp, err := surface.SearchFiles(q, filters, intArg(args, "limit", 50), intArg(args, "offset", 0))
		if err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return jsonResult(resp)
	})
}

func addSemanticSearchTool(s *server.MCPServer, surface *command.Surface) {
	tool := mcplib.NewTool(
		"semantic_search",
		mcplib.WithDescription("Embedding-similarity search over indexed files, ranked by cosine similarity."),
		mcplib.WithString("query", mcplib.Required(), mcplib.Description("natural language search query")),
		mcplib.WithNumber("limit", mcplib.Description("maximum results to return (default 50)")),
		mcplib.WithNumber("threshold", mcplib.Description("minimum cosine similarity (default 0.7)")),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcplib.NewToolResultError("invalid arguments format"), nil
		}
		q, ok := stringArg(args, "query")
		if !ok || q == "" {
			return mcplib.NewToolResultError("query parameter is required"), nil
		}

		results, err := surface.SemanticSearch(ctx, q, intArg(args, "limit", 50), floatArg(args, "threshold", 0.7))
		if err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return jsonResult(results)
	})
}

func addFindSimilarFilesTool(s *server.MCPServer, surface *command.Surface) {
	tool := mcplib.NewTool(
		"find_similar_files",
		mcplib.WithDescription("Find files whose embeddings are closest to a given file's, excluding the file itself."),
		mcplib.WithNumber("file_id", mcplib.Required(), mcplib.Description("the file to compare against")),
		mcplib.WithNumber("limit", mcplib.Description("maximum results to return (default 10)")),
		mcplib.WithNumber("threshold", mcplib.Description("minimum cosine similarity (default 0.7)")),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcplib.NewToolResultError("invalid arguments format"), nil
		}
		fileID, ok := args["file_id"].(float64)
		if !ok {
			return mcplib.NewToolResultError("file_id parameter is required"), nil
		}

		results, err := surface.FindSimilarFiles(int64(fileID), intArg(args, "limit", 10), floatArg(args, "threshold", 0.7))
		if err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return jsonResult(results)
	})
}

func addGetFileDetailTool(s *server.MCPServer, surface *command.Surface) {
	tool := mcplib.NewTool(
		"get_file_detail",
		mcplib.WithDescription("Fetch a single indexed file's metadata, summary, and content preview (or full text)."),
		mcplib.WithNumber("file_id", mcplib.Required(), mcplib.Description("the file to fetch")),
		mcplib.WithBoolean("include_full_content", mcplib.Description("also return the complete extracted text alongside the preview")),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcplib.NewToolResultError("invalid arguments format"), nil
		}
		fileID, ok := args["file_id"].(float64)
		if !ok {
			return mcplib.NewToolResultError("file_id parameter is required"), nil
		}

		detail, err := surface.GetFileDetail(int64(fileID), boolArg(args, "include_full_content", false))
		if err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return jsonResult(detail)
	})
}

func addExportPackageTool(s *server.MCPServer, surface *command.Surface) {
	tool := mcplib.NewTool(
		"export_package",
		mcplib.WithDescription("Export a portable JSON package of chunked file content, optionally with embeddings, to a path on disk."),
		mcplib.WithString("output_path", mcplib.Required(), mcplib.Description("file to write the package to")),
		mcplib.WithString("tenant_id", mcplib.Description("tenant identifier recorded in the package")),
		mcplib.WithBoolean("include_embeddings", mcplib.Description("include per-chunk embeddings")),
		mcplib.WithString("model_version", mcplib.Description("embedding model version recorded in metadata")),
		mcplib.WithReadOnlyHintAnnotation(false),
		mcplib.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args, ok := argsOf(request)
		if !ok {
			return mcplib.NewToolResultError("invalid arguments format"), nil
		}
		outputPath, ok := stringArg(args, "output_path")
		if !ok || outputPath == "" {
			return mcplib.NewToolResultError("output_path parameter is required"), nil
		}
		tenantID, _ := stringArg(args, "tenant_id")
		modelVersion, _ := stringArg(args, "model_version")

		path, err := surface.ExportPackage(export.PackageConfig{
			OutputPath:        outputPath,
			TenantID:          tenantID,
			IncludeEmbeddings: boolArg(args, "include_embeddings", false),
			ModelVersion:      modelVersion,
			Mode:              "full",
		})
		if err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]string{"path": path})
	})
}

func addGetIndexStatusTool(s *server.MCPServer, surface *command.Surface) {
	tool := mcplib.NewTool(
		"get_index_status",
		mcplib.WithDescription("Poll the status of the active (or most recent) indexing run. MCP's request/response model has no server-push, so agents poll this between other tool calls."),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(surface.GetIndexStatus())
	})
}
