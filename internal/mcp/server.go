// Package mcp exposes the report pipeline to MCP clients (editors, agents)
// as tools served over stdio.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"voxlis/internal/pipeline"
	"voxlis/internal/report"
	"voxlis/internal/textreport"
)

// Server wraps the MCP SDK server and exposes the report pipeline as tools.
type Server struct {
	MCPServer *sdkmcp.Server
	svc       *pipeline.Service
}

// NewServer creates an MCP server over svc. version is reported to clients.
func NewServer(svc *pipeline.Service, version string) *Server {
	s := &Server{svc: svc}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "voxlis", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_unc_test",
		Description: "Get the normalized compatibility test report for an executor: counts, percentage, per-test results and categories.",
	}, s.handleGetUncTest)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_executors",
		Description: "List executors known to the status listing and the static report table.",
	}, s.handleListExecutors)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "parse_report",
		Description: "Parse a raw text test dump into a normalized report without fetching anything.",
	}, s.handleParseReport)
}

// --- Tool input/output types ---

type getUncTestInput struct {
	Executor string `json:"executor" jsonschema:"executor name, matched case-insensitively against the listing"`
	Type     string `json:"type,omitempty" jsonschema:"report kind: sunc (default) or unc"`
}

type getUncTestOutput struct {
	Cache  string         `json:"cache"`
	Report *report.Report `json:"report"`
}

type listExecutorsInput struct{}

type executorSummary struct {
	Name           string   `json:"name"`
	Listed         bool     `json:"listed"`
	DeepReport     bool     `json:"deep_report"`
	StaticReport   bool     `json:"static_report"`
	SuncPercentage *float64 `json:"sunc_percentage,omitempty"`
	UncPercentage  *float64 `json:"unc_percentage,omitempty"`
}

type listExecutorsOutput struct {
	Executors []executorSummary `json:"executors"`
	// Warning is set when the listing could not be fetched.
	Warning string `json:"warning,omitempty"`
}

type parseReportInput struct {
	Text string `json:"text" jsonschema:"raw text dump as produced by the test script"`
	Type string `json:"type,omitempty" jsonschema:"report kind: sunc (default) or unc"`
	Name string `json:"name,omitempty" jsonschema:"executor name to stamp on the report"`
}

type parseReportOutput struct {
	Report *report.Report `json:"report"`
}

// --- Handlers ---

func (s *Server) handleGetUncTest(ctx context.Context, _ *sdkmcp.CallToolRequest, input getUncTestInput) (*sdkmcp.CallToolResult, getUncTestOutput, error) {
	name := strings.TrimSpace(input.Executor)
	if name == "" {
		return nil, getUncTestOutput{}, fmt.Errorf("executor is required")
	}
	r, status, err := s.svc.Report(ctx, name, report.ParseKind(input.Type))
	if err != nil {
		return nil, getUncTestOutput{}, fmt.Errorf("get_unc_test %s: %w", name, err)
	}
	return nil, getUncTestOutput{Cache: string(status), Report: r}, nil
}

func (s *Server) handleListExecutors(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listExecutorsInput) (*sdkmcp.CallToolResult, listExecutorsOutput, error) {
	res := s.svc.Resolver()
	byKey := map[string]*executorSummary{}
	var out listExecutorsOutput

	list, _, err := res.Listing(ctx)
	if err != nil {
		out.Warning = "status listing unavailable: " + err.Error()
	} else {
		for _, e := range list.Exploits {
			key := strings.ToLower(e.Title)
			if _, dup := byKey[key]; dup || key == "" {
				continue
			}
			byKey[key] = &executorSummary{
				Name:           e.Title,
				Listed:         true,
				DeepReport:     e.HasDeepReport(),
				SuncPercentage: e.SuncPercentage,
				UncPercentage:  e.UncPercentage,
			}
		}
	}
	for _, name := range res.Executors() {
		if sum, ok := byKey[name]; ok {
			sum.StaticReport = true
			continue
		}
		byKey[name] = &executorSummary{Name: name, StaticReport: true}
	}

	out.Executors = make([]executorSummary, 0, len(byKey))
	for _, sum := range byKey {
		out.Executors = append(out.Executors, *sum)
	}
	sort.Slice(out.Executors, func(i, j int) bool {
		return strings.ToLower(out.Executors[i].Name) < strings.ToLower(out.Executors[j].Name)
	})
	return nil, out, nil
}

func (s *Server) handleParseReport(_ context.Context, _ *sdkmcp.CallToolRequest, input parseReportInput) (*sdkmcp.CallToolResult, parseReportOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, parseReportOutput{}, fmt.Errorf("text is required")
	}
	r := textreport.Parse(input.Text, report.ParseKind(input.Type))
	r.ExecutorName = input.Name
	r.Source = "inline"
	return nil, parseReportOutput{Report: r}, nil
}
