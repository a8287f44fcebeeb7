// Package news turns raw Hacker News items into the display shapes the
// API serves, and derives trending statistics over them.
package news

import (
	"fmt"
	"time"

	"hn402/hn"
)

// Story is the display projection of a story item.
type Story struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url,omitempty"`
	Score        int    `json:"score"`
	Author       string `json:"author"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	CommentCount int    `json:"commentCount"`
	HNURL        string `json:"hnUrl"`
}

// Comment is the display projection of a comment item.
type Comment struct {
	ID          int    `json:"id"`
	Author      string `json:"author"`
	Text        string `json:"text"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// ProjectStory builds a Story from a fetched item. The caller guarantees
// item is non-nil; missing items must be dropped before projection.
func ProjectStory(item *hn.Item) Story {
	return Story{
		ID:           item.ID,
		Title:        item.Title,
		URL:          item.URL,
		Score:        item.Score,
		Author:       item.By,
		PublishedAt:  isoTime(item.Time),
		CommentCount: item.Descendants,
		HNURL:        fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID),
	}
}

// ProjectComment builds a Comment from a fetched item.
func ProjectComment(item *hn.Item) Comment {
	return Comment{
		ID:          item.ID,
		Author:      item.By,
		Text:        item.Text,
		PublishedAt: isoTime(item.Time),
	}
}

// isoTime renders epoch seconds as RFC 3339 UTC, or "" when the source
// item carries no timestamp (the field is then omitted from the JSON).
func isoTime(epoch int64) string {
	if epoch == 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}
