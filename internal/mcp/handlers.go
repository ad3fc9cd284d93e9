package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc}
}

// ProcessRequest represents the arguments for note_process.
type ProcessRequest struct {
	Note string `json:"note"`
}

// ImportRequest represents the arguments for note_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// ExportRequest represents the arguments for data_export.
type ExportRequest struct {
	Path                   string `json:"path,omitempty"`
	IncludeRecommendations bool   `json:"include_recommendations,omitempty"`
}

// ListEnvelopesRequest represents the arguments for envelope_list.
type ListEnvelopesRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SuggestNameRequest represents the arguments for envelope_suggest_name.
type SuggestNameRequest struct {
	Text string `json:"text"`
}

// ListCardsRequest represents the arguments for card_list.
type ListCardsRequest struct {
	EnvelopeID string `json:"envelope_id,omitempty"`
	Type       string `json:"type,omitempty"`
	Assignee   string `json:"assignee,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// GetCardRequest represents the arguments for card_get.
type GetCardRequest struct {
	ID string `json:"id"`
}

// RecommendationsRequest represents the arguments for recommendation_list.
type RecommendationsRequest struct {
	Limit int    `json:"limit,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// ContextRequest represents the arguments for context_get.
type ContextRequest struct {
	Dimension string `json:"dimension,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// HandleProcess handles the note_process tool call.
func (h *Handlers) HandleProcess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProcessRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.Process(ctx, ops.ProcessInput{Note: input.Note}))
}

// HandleImport handles the note_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.ImportNotes(ctx, ops.ImportNotesInput{Path: input.Path}))
}

// HandleExport handles the data_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.Export(ctx, ops.ExportInput{
		Path:                   input.Path,
		IncludeRecommendations: input.IncludeRecommendations,
	}))
}

// HandleAnalyze handles the analysis_run tool call.
func (h *Handlers) HandleAnalyze(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(h.svc.Analyze(ctx))
}

// HandleListEnvelopes handles the envelope_list tool call.
func (h *Handlers) HandleListEnvelopes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListEnvelopesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.ListEnvelopes(ctx, ops.ListEnvelopesInput{Limit: input.Limit, Offset: input.Offset}))
}

// HandleSuggestName handles the envelope_suggest_name tool call.
func (h *Handlers) HandleSuggestName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SuggestNameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.SuggestName(ctx, ops.SuggestNameInput{Text: input.Text}))
}

// HandleListCards handles the card_list tool call.
func (h *Handlers) HandleListCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListCardsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.ListCards(ctx, ops.ListCardsInput{
		EnvelopeID: input.EnvelopeID,
		Type:       input.Type,
		Assignee:   input.Assignee,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}))
}

// HandleGetCard handles the card_get tool call.
func (h *Handlers) HandleGetCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetCardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.GetCard(ctx, ops.GetCardInput{ID: input.ID}))
}

// HandleRecommendations handles the recommendation_list tool call.
func (h *Handlers) HandleRecommendations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecommendationsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.Recommendations(ctx, ops.RecommendationsInput{Limit: input.Limit, Kind: input.Kind}))
}

// HandleClearRecommendations handles the recommendation_clear tool call.
func (h *Handlers) HandleClearRecommendations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(h.svc.ClearRecommendations(ctx))
}

// HandleContext handles the context_get tool call.
func (h *Handlers) HandleContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return respond(h.svc.ContextSnapshot(ctx, ops.ContextInput{Dimension: input.Dimension, Limit: input.Limit}))
}

// Result helpers

// respond turns an operation's (result, error) pair into a tool result.
func respond(data any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(data)
}

// errorResult creates an MCP error result with IsError set. INTERNAL
// errors carry no details, which may hold paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if e, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": err.Error(),
			"status":  e.Status,
		}
		if e.Code != errors.ErrInternal && e.Details != nil {
			errorObj["details"] = e.Details
		}
		if e.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
