package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/healthlang/ilera/orchestrator"
	"github.com/healthlang/ilera/schema"
)

const Version = "1.0.0"

// New builds an MCP server exposing the query pipeline as a tool, so
// agent hosts can call the same pipeline the HTTP API serves.
func New(orch *orchestrator.Orchestrator) *server.MCPServer {
	s := server.NewMCPServer(
		"ilera",
		Version,
		server.WithInstructions("Bilingual (English/Yoruba) medical question answering with safety triage and cited sources"),
	)

	s.AddTool(
		mcp.NewToolWithRawSchema("medical-query", "Answer a medical question in English or Yoruba using retrieved medical context, with safety classification and source citations", GetMedicalQuerySchema()),
		HandleMedicalQuery(orch),
	)

	return s
}

// ServeStdio runs the server over stdio until the stream closes.
func ServeStdio(orch *orchestrator.Orchestrator) error {
	return server.ServeStdio(New(orch))
}

// GetMedicalQuerySchema returns the raw JSON schema for the
// medical-query tool input.
func GetMedicalQuerySchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The medical question to answer"
			},
			"source_lang": {
				"type": "string",
				"enum": ["en", "yo"],
				"description": "Language of the question (default en)"
			},
			"target_lang": {
				"type": "string",
				"enum": ["en", "yo"],
				"description": "Language for the answer (default same as source)"
			},
			"translate": {
				"type": "boolean",
				"description": "Translate the formatted answer into target_lang"
			},
			"use_cache": {
				"type": "boolean",
				"description": "Serve and store this query through the response cache (default true)"
			},
			"include_sources": {
				"type": "boolean",
				"description": "Include source citations in the answer (default true)"
			}
		},
		"required": ["query"]
	}`)
}

// HandleMedicalQuery runs the pipeline for a tool call.
func HandleMedicalQuery(orch *orchestrator.Orchestrator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		if query == "" {
			return nil, fmt.Errorf("query is required")
		}
		useCache := request.GetBool("use_cache", true)
		includeSources := request.GetBool("include_sources", true)
		resp := orch.ProcessQuery(ctx, schema.QueryRequest{
			Text:           query,
			SourceLang:     request.GetString("source_lang", ""),
			TargetLang:     request.GetString("target_lang", ""),
			Translate:      request.GetBool("translate", false),
			UseCache:       &useCache,
			IncludeSources: &includeSources,
		})
		payload, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
