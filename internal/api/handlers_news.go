package api

import (
	"net/http"
	"strings"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/classify"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/pipeline"
)

// handleNews serves GET /api/news?summary=1&group=1.
func (s *Server) handleNews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := pipeline.Options{
			Summarize: queryFlag(q.Get("summary")),
			Group:     queryFlag(q.Get("group")),
		}

		res, err := s.news.Run(r.Context(), opts)
		if err != nil {
			s.logger.Error("news request failed",
				"request_id", RequestID(r.Context()),
				"summary", opts.Summarize,
				"group", opts.Group,
				"error", err,
			)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, NewsResponse(res, opts.Group))
	}
}

// NewsResponse builds the success envelope for a pipeline result. The
// articles array or grouped object is always present, empty when there is
// nothing to show.
func NewsResponse(res *pipeline.Result, group bool) map[string]any {
	resp := map[string]any{
		"ok":    true,
		"count": res.Count,
	}
	if group {
		grouped := res.Grouped
		if grouped == nil {
			grouped = map[classify.Category][]pipeline.Enriched{}
		}
		resp["grouped"] = grouped
	} else {
		articles := res.Articles
		if articles == nil {
			articles = []pipeline.Enriched{}
		}
		resp["articles"] = articles
	}
	return resp
}

// handleHealth serves GET /api/health.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"ok": true}
		if s.cache != nil {
			resp["cache"] = s.cache.Stats()
		}
		if s.summarizer != nil {
			resp["summarizer"] = s.summarizer.Stats()
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// queryFlag reports whether a query value enables an option: "1" or "true".
func queryFlag(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
