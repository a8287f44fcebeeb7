package news

import (
	"context"

	"golang.org/x/sync/errgroup"

	"hn402/hn"
)

// MaxDetailFetch caps how many items a single aggregation will fetch,
// independent of the caller-supplied limit.
const MaxDetailFetch = 30

// ItemFetcher fetches one item; a missing item is (nil, nil).
type ItemFetcher interface {
	Item(ctx context.Context, id int) (*hn.Item, error)
}

// StoriesWithDetails fetches the first min(limit, MaxDetailFetch) IDs
// concurrently and projects the results, preserving input order. The join
// is all-or-nothing: any fetch error fails the whole aggregation. Missing
// items are dropped, so the result can be shorter than requested.
func StoriesWithDetails(ctx context.Context, fetcher ItemFetcher, ids []int, limit int) ([]Story, error) {
	items, err := fetchOrdered(ctx, fetcher, ids, min(limit, MaxDetailFetch))
	if err != nil {
		return nil, err
	}

	stories := make([]Story, 0, len(items))
	for _, item := range items {
		stories = append(stories, ProjectStory(item))
	}
	return stories, nil
}

// CommentsWithDetails is the comment-shaped counterpart, used for a
// story's direct children.
func CommentsWithDetails(ctx context.Context, fetcher ItemFetcher, ids []int, limit int) ([]Comment, error) {
	items, err := fetchOrdered(ctx, fetcher, ids, limit)
	if err != nil {
		return nil, err
	}

	comments := make([]Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, ProjectComment(item))
	}
	return comments, nil
}

// fetchOrdered fans out fetches for the first count IDs and returns the
// non-nil results in input order.
func fetchOrdered(ctx context.Context, fetcher ItemFetcher, ids []int, count int) ([]*hn.Item, error) {
	if count > len(ids) {
		count = len(ids)
	}
	if count < 0 {
		count = 0
	}
	ids = ids[:count]

	results := make([]*hn.Item, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			item, err := fetcher.Item(ctx, id)
			if err != nil {
				return err
			}
			results[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]*hn.Item, 0, len(results))
	for _, item := range results {
		if item == nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
