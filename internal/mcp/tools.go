package mcp

import "github.com/mark3labs/mcp-go/mcp"

var processToolDef = mcp.NewTool("note_process",
	mcp.WithDescription("Ingest one free-form note: extract type, assignee, date and keywords, route it into an envelope (creating one if needed) and store it as a card. Re-ingesting the same note into the same envelope returns the existing card with duplicate=true."),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithString("note",
		mcp.Required(),
		mcp.Description("The note text, e.g. \"Call Sarah about the Q3 budget next Monday\""),
	),
)

var importToolDef = mcp.NewTool("note_import",
	mcp.WithDescription("Ingest every note in a markdown (.md, .markdown) or plain text (.txt) file. Each paragraph or list item is one note; in text files each non-empty line is. The file must sit directly in the exports directory or a configured allowed path."),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path of the notes file"),
	),
)

var exportToolDef = mcp.NewTool("data_export",
	mcp.WithDescription("Write envelopes, cards and optionally recommendations to a JSONL file."),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithString("path",
		mcp.Description("Destination .jsonl path (default: exports/cpa-<timestamp>.jsonl)"),
	),
	mcp.WithBoolean("include_recommendations",
		mcp.Description("Also export stored recommendations (default: false)"),
	),
)

var analyzeToolDef = mcp.NewTool("analysis_run",
	mcp.WithDescription("Run the batch analyzer once: find duplicate cards, date conflicts per assignee, idea clusters and next-step suggestions. Findings are appended to the recommendation log and returned."),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
)

var listEnvelopesToolDef = mcp.NewTool("envelope_list",
	mcp.WithDescription("List envelopes newest first, with their card counts."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of envelopes (default: 20, max: 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of envelopes to skip"),
	),
)

var suggestNameToolDef = mcp.NewTool("envelope_suggest_name",
	mcp.WithDescription("Show the envelope name ingestion would give a text, and the closest existing envelope name."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to name"),
	),
)

var listCardsToolDef = mcp.NewTool("card_list",
	mcp.WithDescription("List cards in insertion order, optionally filtered by envelope, type or assignee."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("envelope_id",
		mcp.Description("Only cards in this envelope"),
	),
	mcp.WithString("type",
		mcp.Description("Only cards of this type"),
		mcp.Enum("task", "reminder", "idea"),
	),
	mcp.WithString("assignee",
		mcp.Description("Only cards with this assignee (case-insensitive)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of cards (default: 20, max: 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of cards to skip"),
	),
)

var getCardToolDef = mcp.NewTool("card_get",
	mcp.WithDescription("Get one card and its envelope by card ID."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Card ID"),
	),
)

var listRecommendationsToolDef = mcp.NewTool("recommendation_list",
	mcp.WithDescription("List the most recent recommendations, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of recommendations (default: 50, max: 500)"),
	),
	mcp.WithString("kind",
		mcp.Description("Only recommendations of this kind"),
		mcp.Enum("duplicate", "assignee_conflict", "cluster_suggestion", "suggestion"),
	),
)

var clearRecommendationsToolDef = mcp.NewTool("recommendation_clear",
	mcp.WithDescription("Delete every stored recommendation."),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(true),
)

var contextToolDef = mcp.NewTool("context_get",
	mcp.WithDescription("Show the context model: how often each project, person and theme has appeared, highest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("dimension",
		mcp.Description("Only this dimension"),
		mcp.Enum("projects", "people", "themes"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries per dimension (default: all)"),
	),
)
