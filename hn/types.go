package hn

// Item is a single Hacker News record: story, comment, job, poll, or pollopt.
type Item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Kids        []int  `json:"kids"`
	Parent      int    `json:"parent"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
}

// Feed names an ordered ID list maintained upstream.
type Feed string

const (
	FeedTop  Feed = "top"
	FeedNew  Feed = "new"
	FeedBest Feed = "best"
	FeedAsk  Feed = "ask"
	FeedShow Feed = "show"
)

// endpoint maps a feed to its upstream path segment.
var endpoint = map[Feed]string{
	FeedTop:  "topstories",
	FeedNew:  "newstories",
	FeedBest: "beststories",
	FeedAsk:  "askstories",
	FeedShow: "showstories",
}
