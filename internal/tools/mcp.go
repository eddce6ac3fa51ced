package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the six playbook tools on an MCP server.
func (r *Router) RegisterMCP(srv *mcp.Server) {
	r.registerOverviewTool(srv)
	r.registerDefinitionTool(srv)
	r.registerIssueTool(srv)
	r.registerComplianceTool(srv)
	r.registerCompareTool(srv)
	r.registerReportTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// register wires a handler returning any JSON-marshalable response.
func register(srv *mcp.Server, tool *mcp.Tool, handle func(ctx context.Context, args json.RawMessage) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := handle(ctx, req.Params.Arguments)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func decode[T any](args json.RawMessage) (T, error) {
	var v T
	if len(args) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(args, &v); err != nil {
		return v, fmt.Errorf("invalid arguments: %w", err)
	}
	return v, nil
}

// --- get_comprehensive_overview ---

func (r *Router) registerOverviewTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_comprehensive_overview",
		Description: "Structural overview of the entire analytics playbook: sections, subsections, and an outline for navigation.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	register(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return r.Overview(ctx), nil
	})
}

// --- get_metric_definition ---

type definitionReq struct {
	Term string `json:"term"`
}

func (r *Router) registerDefinitionTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_metric_definition",
		Description: "Look up the precise definition of a metric or dimension term (e.g. 'Session', 'Attribution Window'). Best for 'what does X mean?'.",
		InputSchema: inputSchema(map[string]any{
			"term": map[string]any{"type": "string", "description": "Metric or dimension name"},
		}, []string{"term"}),
	}
	register(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		req, err := decode[definitionReq](args)
		if err != nil {
			return nil, err
		}
		return r.Definition(ctx, req.Term)
	})
}

// --- solve_analytics_issue ---

type issueReq struct {
	Symptom string `json:"symptom"`
}

func (r *Router) registerIssueTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "solve_analytics_issue",
		Description: "Search troubleshooting guidance for a symptom, such as data discrepancies or implementation errors.",
		InputSchema: inputSchema(map[string]any{
			"symptom": map[string]any{"type": "string", "description": "Observed problem"},
		}, []string{"symptom"}),
	}
	register(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		req, err := decode[issueReq](args)
		if err != nil {
			return nil, err
		}
		return r.SolveIssue(ctx, req.Symptom)
	})
}

// --- check_limits_and_compliance ---

type complianceReq struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform,omitempty"`
}

func (r *Router) registerComplianceTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "check_limits_and_compliance",
		Description: "Query platform limits, data retention, cookie consent, or age restrictions. Optionally scoped to one platform.",
		InputSchema: inputSchema(map[string]any{
			"topic":    map[string]any{"type": "string", "description": "Compliance or limit topic"},
			"platform": map[string]any{"type": "string", "description": "Optional platform filter, e.g. GA4"},
		}, []string{"topic"}),
	}
	register(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		req, err := decode[complianceReq](args)
		if err != nil {
			return nil, err
		}
		return r.CheckCompliance(ctx, req.Topic, req.Platform)
	})
}

// --- compare_platform_strategy ---

type compareReq struct {
	Dimension string   `json:"dimension"`
	Platforms []string `json:"platforms,omitempty"`
}

func (r *Router) registerCompareTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "compare_platform_strategy",
		Description: "Technical comparison between platforms (GA4, Segment, Shopify) for a capability or decision dimension.",
		InputSchema: inputSchema(map[string]any{
			"dimension": map[string]any{"type": "string", "description": "Comparison dimension, e.g. 'identity resolution'"},
			"platforms": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Optional platforms to surface",
			},
		}, []string{"dimension"}),
	}
	register(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		req, err := decode[compareReq](args)
		if err != nil {
			return nil, err
		}
		return r.Compare(ctx, req.Dimension, req.Platforms)
	})
}

// --- report_documentation_issue ---

type reportReq struct {
	Section string `json:"section"`
	Note    string `json:"note"`
}

func (r *Router) registerReportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "report_documentation_issue",
		Description: "Report an error or outdated information in the playbook, e.g. \"The GA4 limit in 'Limits' is outdated.\"",
		InputSchema: inputSchema(map[string]any{
			"section": map[string]any{"type": "string", "description": "Section title or breadcrumb"},
			"note":    map[string]any{"type": "string", "description": "What is wrong or outdated"},
		}, []string{"section", "note"}),
	}
	register(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		req, err := decode[reportReq](args)
		if err != nil {
			return nil, err
		}
		return r.ReportIssue(ctx, req.Section, req.Note)
	})
}
