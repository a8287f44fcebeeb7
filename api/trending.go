package api

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"hn402/hn"
	"hn402/news"
)

type TrendingHandler struct {
	hn *hn.Client
}

func NewTrendingHandler(client *hn.Client) *TrendingHandler {
	return &TrendingHandler{hn: client}
}

type trendingResponse struct {
	TopStories      []news.Story `json:"topStories"`
	AskStories      []news.Story `json:"askStories"`
	ShowStories     []news.Story `json:"showStories"`
	HotDomains      []string     `json:"hotDomains"`
	TotalEngagement int          `json:"totalEngagement"`
	AverageScore    *int         `json:"averageScore,omitempty"`
}

// Trending handles GET /api/trending?limit=N: the top, ask, and show
// feeds fetched in parallel, plus aggregate statistics over the top
// stories.
func (h *TrendingHandler) Trending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := limitParam(r, defaultTrending, maxTrendingTake)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var top, ask, show []news.Story
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.feedDetails(gctx, hn.FeedTop, limit, &top) })
	g.Go(func() error { return h.feedDetails(gctx, hn.FeedAsk, limit, &ask) })
	g.Go(func() error { return h.feedDetails(gctx, hn.FeedShow, limit, &show) })
	if err := g.Wait(); err != nil {
		slog.Error("error building trending", "error", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}

	resp := trendingResponse{
		TopStories:      top,
		AskStories:      ask,
		ShowStories:     show,
		HotDomains:      news.HotDomains(top),
		TotalEngagement: news.TotalEngagement(top),
		AverageScore:    news.AverageScore(top),
	}
	writeJSON(w, r, resp)
}

// feedDetails runs one feed pipeline: IDs then details.
func (h *TrendingHandler) feedDetails(ctx context.Context, feed hn.Feed, limit int, out *[]news.Story) error {
	ids, err := h.hn.FeedIDs(ctx, feed)
	if err != nil {
		return err
	}
	stories, err := news.StoriesWithDetails(ctx, h.hn, ids, limit)
	if err != nil {
		return err
	}
	*out = stories
	return nil
}
