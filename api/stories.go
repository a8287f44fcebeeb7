// Package api holds the HTTP handlers: thin orchestration over the
// upstream client and the news projections, one handler struct per
// resource, constructor-injected dependencies.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"hn402/hn"
	"hn402/news"
)

const (
	overviewLimit   = 5
	maxComments     = 5
	defaultLimit    = 10
	maxLimit        = 30
	maxTrendingTake = 10
	defaultTrending = 5
)

type StoriesHandler struct {
	hn *hn.Client
}

func NewStoriesHandler(client *hn.Client) *StoriesHandler {
	return &StoriesHandler{hn: client}
}

// Overview handles GET /api/overview: the top feed at a fixed limit of
// five, regardless of any caller-supplied query. The free teaser route.
func (h *StoriesHandler) Overview(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, hn.FeedTop, overviewLimit)
}

// Top handles GET /api/stories/top?limit=N.
func (h *StoriesHandler) Top(w http.ResponseWriter, r *http.Request) {
	h.serveFeedWithLimit(w, r, hn.FeedTop)
}

// New handles GET /api/stories/new?limit=N.
func (h *StoriesHandler) New(w http.ResponseWriter, r *http.Request) {
	h.serveFeedWithLimit(w, r, hn.FeedNew)
}

// Best handles GET /api/stories/best?limit=N.
func (h *StoriesHandler) Best(w http.ResponseWriter, r *http.Request) {
	h.serveFeedWithLimit(w, r, hn.FeedBest)
}

func (h *StoriesHandler) serveFeedWithLimit(w http.ResponseWriter, r *http.Request, feed hn.Feed) {
	limit, err := limitParam(r, defaultLimit, maxLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.serveFeed(w, r, feed, limit)
}

func (h *StoriesHandler) serveFeed(w http.ResponseWriter, r *http.Request, feed hn.Feed, limit int) {
	ctx := r.Context()

	ids, err := h.hn.FeedIDs(ctx, feed)
	if err != nil {
		slog.Error("error fetching feed", "feed", feed, "error", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}

	stories, err := news.StoriesWithDetails(ctx, h.hn, ids, limit)
	if err != nil {
		slog.Error("error fetching stories", "feed", feed, "error", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}

	resp := map[string]interface{}{
		"feed":    feed,
		"count":   len(stories),
		"stories": stories,
	}
	writeJSON(w, r, resp)
}

// GetStory handles GET /api/stories/{id}: one story plus up to five of
// its direct child comments.
func (h *StoriesHandler) GetStory(w http.ResponseWriter, r *http.Request) {
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

	comments, err := news.CommentsWithDetails(ctx, h.hn, item.Kids, maxComments)
	if err != nil {
		slog.Error("error fetching comments", "story_id", id, "error", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}

	resp := map[string]interface{}{
		"story":       news.ProjectStory(item),
		"topComments": comments,
	}
	writeJSON(w, r, resp)
}
