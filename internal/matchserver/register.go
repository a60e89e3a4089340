// Package matchserver registers the resume-matching tools on an MCP
// server. Transports build one server per session through New, supplying
// the session id and secret resolution that differ between hosts.
package matchserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/resumatch/resumatch-mcp/internal/engine"
)

// Options carries the per-transport parts of the tool handlers.
type Options struct {
	Version   string
	SessionID string                // rate-limit bucket for this server instance
	Secret    engine.SecretProvider // backend Authorization resolution
}

const (
	matchResumeDescription = "Match a resume against current job postings. Accepts plain resume text plus optional " +
		"filters (keywords, location, date range, experience, page, sortBy) and returns a full Markdown report: " +
		"match summary, ranked index table, and a detailed section per job with extracted skills and summary."
	matchJobsDescription = "Find jobs worth applying to for a resume. Same input as match_resume, but returns a " +
		"compact Markdown index table only (rank, company, title, match score, location, experience, posted date, " +
		"apply link) without per-job detail sections."
)

// New builds an MCP server exposing match_resume and match_jobs_to_apply.
func New(eng *engine.Engine, opts Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "resumatch",
		Version: opts.Version,
	}, nil)
	addMatchTool(server, eng, opts, engine.ToolMatchResume, matchResumeDescription)
	addMatchTool(server, eng, opts, engine.ToolMatchJobs, matchJobsDescription)
	return server
}

func addMatchTool(server *mcp.Server, eng *engine.Engine, opts Options, name, description string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        name,
		Description: description,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.MatchInput) (*mcp.CallToolResult, engine.Envelope, error) {
		env := eng.HandleToolCall(ctx, name, input, opts.SessionID, opts.Secret)

		// Handled failures stay inside the envelope; IsError flags them
		// without surfacing a protocol-level error.
		if env.Metadata.Status != engine.StatusSuccess {
			raw, err := json.Marshal(env)
			if err != nil {
				return nil, engine.Envelope{}, err
			}
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
			}, *env, nil
		}
		return nil, *env, nil
	})
}

// ToolDescriptor is the REST-facing view of one tool, served by the HTTP
// and edge transports outside the MCP protocol.
type ToolDescriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required"`
	Optional    []string `json:"optional"`
}

var optionalFields = []string{
	"userExperience", "keywords", "location", "startDate", "endDate", "page", "sortBy",
}

// Descriptors lists both tools with their shared input contract.
func Descriptors() []ToolDescriptor {
	return []ToolDescriptor{
		{
			Name:        engine.ToolMatchResume,
			Description: matchResumeDescription,
			Required:    []string{"resumeText"},
			Optional:    optionalFields,
		},
		{
			Name:        engine.ToolMatchJobs,
			Description: matchJobsDescription,
			Required:    []string{"resumeText"},
			Optional:    optionalFields,
		},
	}
}

// Descriptor returns one tool's descriptor by name.
func Descriptor(name string) (ToolDescriptor, bool) {
	for _, d := range Descriptors() {
		if d.Name == name {
			return d, true
		}
	}
	return ToolDescriptor{}, false
}
