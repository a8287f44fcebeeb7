package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"hn402/hn"
	"hn402/readability"
)

type ArticlesHandler struct {
	hn *hn.Client
}

func NewArticlesHandler(client *hn.Client) *ArticlesHandler {
	return &ArticlesHandler{hn: client}
}

type articleResponse struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Byline    string `json:"byline,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Content   string `json:"content"`
	SourceURL string `json:"sourceUrl"`
}

// GetArticle handles GET /api/stories/{id}/article: reader-mode
// extraction of the story's external URL. Nothing is cached; every call
// refetches and re-extracts.
func (h *ArticlesHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := h.hn.Item(ctx, id)
	if err != nil {
		slog.Error("error fetching story", "story_id", id, "error", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	if item == nil || item.Type != "story" {
		http.Error(w, "story not found", http.StatusNotFound)
		return
	}
	if item.URL == "" {
		http.Error(w, "story has no URL", http.StatusNotFound)
		return
	}

	article, err := readability.Extract(ctx, item.URL)
	if err != nil {
		slog.Error("article extraction failed", "story_id", id, "url", item.URL, "error", err)
		var statusErr *readability.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		http.Error(w, "article extraction failed", http.StatusBadGateway)
		return
	}

	title := article.Title
	if title == "" {
		title = item.Title
	}

	writeJSON(w, r, articleResponse{
		ID:        item.ID,
		Title:     title,
		Byline:    article.Byline,
		Excerpt:   article.Excerpt,
		Content:   article.Content,
		SourceURL: item.URL,
	})
}
