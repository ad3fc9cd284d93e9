package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"note_process": {
		def:     processToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProcess },
	},
	"note_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"data_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"analysis_run": {
		def:     analyzeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAnalyze },
	},
	"envelope_list": {
		def:     listEnvelopesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListEnvelopes },
	},
	"envelope_suggest_name": {
		def:     suggestNameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSuggestName },
	},
	"card_list": {
		def:     listCardsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListCards },
	},
	"card_get": {
		def:     getCardToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetCard },
	},
	"recommendation_list": {
		def:     listRecommendationsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecommendations },
	},
	"recommendation_clear": {
		def:     clearRecommendationsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClearRecommendations },
	},
	"context_get": {
		def:     contextToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContext },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server exposing svc. Tools listed in the
// service config's DisabledTools are not registered.
func NewServer(svc *ops.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"contextual-personal-assistant",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(svc)

	disabled := make(map[string]bool)
	if svc.Config != nil {
		for _, name := range svc.Config.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves svc over stdio until the client disconnects.
func Run(svc *ops.Service, version string) error {
	return server.ServeStdio(NewServer(svc, version))
}
