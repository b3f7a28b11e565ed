// Package mcp exposes the feedback engine as an MCP (Model Context
// Protocol) server over stdio, so editors and AI tools can capture feedback
// and fetch learned preferences without linking the engine directly.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/springroll-app/quill/internal/config"
	"github.com/springroll-app/quill/internal/enrich"
	"github.com/springroll-app/quill/internal/feedback"
	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "quill")
	Name string

	// Version is the server version
	Version string

	// Root is the project root containing the .quill directory
	Root string
}

// Server wires the feedback service into an MCP server.
type Server struct {
	server  *mcp.Server
	store   *store.SQLiteStore
	svc     *feedback.Service
	builder *enrich.Builder
	root    string
}

// NewServer creates an MCP server backed by the .quill store under
// cfg.Root, creating the directory on first use.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	name := cfg.Name
	if name == "" {
		name = "quill"
	}
	root := cfg.Root
	if root == "" {
		root = "."
	}

	if err := store.EnsureQuillDir(root); err != nil {
		return nil, err
	}
	if err := store.EnsureGitignore(store.LocalQuillPath(root)); err != nil {
		return nil, err
	}

	appCfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	feedbackStore := store.NewSQLiteStore(appCfg.DBPath)
	svc := feedback.NewService(feedbackStore, appCfg.PatternConfig())

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: cfg.Version,
		}, nil),
		store:   feedbackStore,
		svc:     svc,
		builder: enrich.NewBuilder(svc, appCfg.ExampleCount),
		root:    root,
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdio until the client disconnects or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Close releases the underlying store. Safe to call multiple times.
func (s *Server) Close() error {
	return s.store.Close()
}

type captureEditInput struct {
	DocID      string                 `json:"doc_id,omitempty" jsonschema:"ID of the document being edited"`
	TemplateID string                 `json:"template_id" jsonschema:"Template the section belongs to (e.g. pitch-deck)"`
	SectionID  string                 `json:"section_id" jsonschema:"Section within the template (e.g. problem)"`
	Original   string                 `json:"original" jsonschema:"The generated text the user was shown"`
	Edited     string                 `json:"edited" jsonschema:"The user's final version of the text"`
	Context    map[string]interface{} `json:"context,omitempty" jsonschema:"Opaque caller context stored with the record"`
}

type captureAcceptInput struct {
	DocID      string                 `json:"doc_id,omitempty" jsonschema:"ID of the document"`
	TemplateID string                 `json:"template_id" jsonschema:"Template the section belongs to"`
	SectionID  string                 `json:"section_id" jsonschema:"Section within the template"`
	Content    string                 `json:"content" jsonschema:"The generated text the user accepted unchanged"`
	Context    map[string]interface{} `json:"context,omitempty" jsonschema:"Opaque caller context stored with the record"`
}

type captureRejectInput struct {
	DocID      string                 `json:"doc_id,omitempty" jsonschema:"ID of the document"`
	TemplateID string                 `json:"template_id" jsonschema:"Template the section belongs to"`
	SectionID  string                 `json:"section_id" jsonschema:"Section within the template"`
	Content    string                 `json:"content" jsonschema:"The generated text the user discarded"`
	Reason     string                 `json:"reason,omitempty" jsonschema:"Optional free-text reason for the rejection"`
	Context    map[string]interface{} `json:"context,omitempty" jsonschema:"Opaque caller context stored with the record"`
}

type captureOutput struct {
	Captured bool   `json:"captured" jsonschema:"Whether a record was written (false when required metadata was missing)"`
	RecordID string `json:"record_id,omitempty" jsonschema:"ID of the stored record"`
}

type templateInput struct {
	TemplateID string `json:"template_id,omitempty" jsonschema:"Restrict to one template; empty means all templates"`
}

type patternsOutput struct {
	Patterns []models.TerminologyPattern `json:"patterns" jsonschema:"Learned from->to substitutions with occurrence counts"`
}

type styleOutput struct {
	Found bool                 `json:"found" jsonschema:"Whether enough evidence exists to infer style"`
	Style *models.StyleSummary `json:"style,omitempty" jsonschema:"Inferred style tendencies"`
}

type examplesInput struct {
	TemplateID string `json:"template_id" jsonschema:"Template to pull exemplars for"`
	SectionID  string `json:"section_id" jsonschema:"Section to pull exemplars for"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum exemplars to return (default: 3)"`
}

type examplesOutput struct {
	Examples []string `json:"examples" jsonschema:"Previously approved or edited contents, newest first"`
}

type enrichInput struct {
	TemplateID string `json:"template_id" jsonschema:"Template the prompt targets"`
	SectionID  string `json:"section_id" jsonschema:"Section the prompt targets"`
	Prompt     string `json:"prompt,omitempty" jsonschema:"Base generation prompt to augment; may be empty to fetch blocks only"`
}

type enrichOutput struct {
	Prompt       string              `json:"prompt" jsonschema:"The prompt with guidance blocks appended"`
	EnrichedWith enrich.EnrichedWith `json:"enriched_with" jsonschema:"Summary of what was applied"`
}

type statsOutput struct {
	Stats *models.Stats `json:"stats" jsonschema:"Aggregate counts over the feedback corpus"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_capture_edit",
		Description: "Record that the user edited a generated section. Computes a word-level diff and stores an immutable feedback record.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args captureEditInput) (*mcp.CallToolResult, captureOutput, error) {
		record, err := s.svc.CaptureEdit(ctx, args.DocID, args.TemplateID, args.SectionID, args.Original, args.Edited, args.Context)
		if err != nil {
			return nil, captureOutput{}, err
		}
		if record == nil {
			return nil, captureOutput{Captured: false}, nil
		}
		return nil, captureOutput{Captured: true, RecordID: record.ID}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_capture_accept",
		Description: "Record that the user accepted a generated section unchanged (positive signal).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args captureAcceptInput) (*mcp.CallToolResult, captureOutput, error) {
		record, err := s.svc.CaptureAcceptance(ctx, args.DocID, args.TemplateID, args.SectionID, args.Content, args.Context)
		if err != nil {
			return nil, captureOutput{}, err
		}
		if record == nil {
			return nil, captureOutput{Captured: false}, nil
		}
		return nil, captureOutput{Captured: true, RecordID: record.ID}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_capture_reject",
		Description: "Record that the user rejected or regenerated a section, with an optional reason.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args captureRejectInput) (*mcp.CallToolResult, captureOutput, error) {
		record, err := s.svc.CaptureRejection(ctx, args.DocID, args.TemplateID, args.SectionID, args.Content, args.Reason, args.Context)
		if err != nil {
			return nil, captureOutput{}, err
		}
		if record == nil {
			return nil, captureOutput{Captured: false}, nil
		}
		return nil, captureOutput{Captured: true, RecordID: record.ID}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_patterns",
		Description: "Get terminology substitutions the user has made at least 5 times, sorted by frequency.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args templateInput) (*mcp.CallToolResult, patternsOutput, error) {
		patterns, err := s.svc.TerminologyPatterns(ctx, args.TemplateID)
		if err != nil {
			return nil, patternsOutput{}, err
		}
		if patterns == nil {
			patterns = []models.TerminologyPattern{}
		}
		return nil, patternsOutput{Patterns: patterns}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_style",
		Description: "Get inferred style preferences (sentence length, detail tendency, bullet usage). Requires at least 10 feedback samples.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args templateInput) (*mcp.CallToolResult, styleOutput, error) {
		style, err := s.svc.StylePreferences(ctx, args.TemplateID)
		if err != nil {
			return nil, styleOutput{}, err
		}
		return nil, styleOutput{Found: style != nil, Style: style}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_examples",
		Description: "Get previously approved section contents for few-shot prompting, newest first.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args examplesInput) (*mcp.CallToolResult, examplesOutput, error) {
		examples, err := s.svc.ExampleOutputs(ctx, args.TemplateID, args.SectionID, args.Limit)
		if err != nil {
			return nil, examplesOutput{}, err
		}
		if examples == nil {
			examples = []string{}
		}
		return nil, examplesOutput{Examples: examples}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_enrich",
		Description: "Augment a generation prompt with learned terminology, style, and example blocks. Returns the prompt unchanged when there is no history.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args enrichInput) (*mcp.CallToolResult, enrichOutput, error) {
		e, err := s.builder.Build(ctx, args.TemplateID, args.SectionID)
		if err != nil {
			return nil, enrichOutput{}, err
		}
		return nil, enrichOutput{
			Prompt:       e.Apply(args.Prompt),
			EnrichedWith: e.EnrichedWith,
		}, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quill_stats",
		Description: "Get aggregate feedback counts (totals, per-type, per-template, time range).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, statsOutput, error) {
		stats, err := s.svc.GetStats(ctx)
		if err != nil {
			return nil, statsOutput{}, err
		}
		return nil, statsOutput{Stats: stats}, nil
	})
}
