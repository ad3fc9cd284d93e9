package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	svc      *ops.Service
	renderer *Renderer
}

// HandleEnvelopes handles GET /envelopes.
func (h *Handlers) HandleEnvelopes(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListEnvelopes(r.Context(), ops.ListEnvelopesInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, r, "envelopes", EnvelopesPageData{
		PageData:   h.page("Envelopes", "envelopes"),
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleEnvelope handles GET /envelopes/{id}.
func (h *Handlers) HandleEnvelope(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("envelope ID is required"))
		return
	}

	env, err := h.svc.Store.GetEnvelope(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	cards, err := h.svc.ListCards(r.Context(), ops.ListCardsInput{EnvelopeID: id, Limit: ops.MaxListLimit})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"envelope": env, "cards": cards.Items})
		return
	}

	views := make([]CardView, len(cards.Items))
	for i, c := range cards.Items {
		views[i] = CardView{Card: c, HTML: renderMarkdown(c.Description), Date: c.DateParsedString()}
	}
	h.renderer.renderPage(w, r, "envelope", EnvelopePageData{
		PageData: h.page(env.Name, "envelopes"),
		Envelope: env,
		Cards:    views,
	})
}

// HandleRecommendations handles GET /recommendations.
func (h *Handlers) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	result, err := h.svc.Recommendations(r.Context(), ops.RecommendationsInput{
		Limit: parseIntParam(r, "limit", ops.DefaultRecommendationLimit),
		Kind:  kind,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	views := make([]RecommendationView, len(result.Items))
	for i, rec := range result.Items {
		views[i] = RecommendationView{Recommendation: rec, Pretty: prettyJSON(rec.Payload)}
	}
	h.renderer.renderPage(w, r, "recommendations", RecommendationsPageData{
		PageData: h.page("Recommendations", "recommendations"),
		Items:    views,
		Kind:     kind,
		Kinds: []card.RecommendationKind{
			card.KindDuplicate, card.KindAssigneeConflict, card.KindClusterSuggestion, card.KindSuggestion,
		},
	})
}

// HandleNote handles POST /notes: ingest the "note" form value.
func (h *Handlers) HandleNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := h.svc.Process(r.Context(), ops.ProcessInput{Note: r.FormValue("note")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	target := "/envelopes/" + out.Envelope.ID
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleAnalysis handles POST /analysis: run the analyzer once.
func (h *Handlers) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Analyze(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/recommendations", http.StatusSeeOther)
}

func (h *Handlers) page(title, nav string) PageData {
	return PageData{Title: title, Version: h.renderer.version, Nav: nav}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
