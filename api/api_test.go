package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hn402/hn"
)

// fakeUpstream serves a canned slice of the Firebase API: feed ID lists
// and items by ID, with absent IDs answered as literal null.
func fakeUpstream(t *testing.T, feeds map[string][]int, items map[int]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ids, ok := feeds[strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")]; ok {
			json.NewEncoder(w).Encode(ids)
			return
		}
		if rest, ok := strings.CutPrefix(r.URL.Path, "/item/"); ok {
			id, err := strconv.Atoi(strings.TrimSuffix(rest, ".json"))
			require.NoError(t, err)
			if body, ok := items[id]; ok {
				w.Write([]byte(body))
			} else {
				w.Write([]byte("null"))
			}
			return
		}
		t.Errorf("unexpected upstream path %s", r.URL.Path)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func storyJSON(id, score int, url string) string {
	return fmt.Sprintf(`{"id":%d,"type":"story","by":"user%d","time":1700000000,"title":"Story %d","url":%q,"score":%d,"descendants":3,"kids":[%d,%d]}`,
		id, id, id, url, score, id*100, id*100+1)
}

func commentJSON(id int) string {
	return fmt.Sprintf(`{"id":%d,"type":"comment","by":"commenter%d","time":1700000500,"text":"comment %d"}`, id, id, id)
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	feeds := map[string][]int{
		"topstories":  {1, 2, 3, 4, 5, 6, 7},
		"newstories":  {7, 6, 5},
		"beststories": {3, 1},
		"askstories":  {4},
		"showstories": {5, 6},
	}
	items := map[int]string{
		1: storyJSON(1, 100, "https://www.example.com/one"),
		2: storyJSON(2, 50, "https://blog.example.org/two"),
		3: storyJSON(3, 10, "https://example.com/three"),
		4: storyJSON(4, 40, ""),
		5: storyJSON(5, 30, "https://five.test/post"),
		6: storyJSON(6, 20, "https://six.test/post"),
		7: storyJSON(7, 70, "https://seven.test/post"),

		100: commentJSON(100),
		101: commentJSON(101),
		200: commentJSON(200),
	}
	upstream := fakeUpstream(t, feeds, items)
	client := hn.NewClient(upstream.URL)

	stories := NewStoriesHandler(client)
	trending := NewTrendingHandler(client)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/overview", stories.Overview)
	mux.HandleFunc("GET /api/stories/top", stories.Top)
	mux.HandleFunc("GET /api/stories/new", stories.New)
	mux.HandleFunc("GET /api/stories/best", stories.Best)
	mux.HandleFunc("GET /api/stories/{id}", stories.GetStory)
	mux.HandleFunc("GET /api/trending", trending.Trending)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func storyIDs(t *testing.T, body map[string]any, key string) []int {
	t.Helper()
	raw, ok := body[key].([]any)
	require.True(t, ok, "missing %q in %v", key, body)
	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		ids = append(ids, int(s.(map[string]any)["id"].(float64)))
	}
	return ids
}

func TestOverviewFixedLimit(t *testing.T) {
	mux := newTestMux(t)

	// The limit query is not part of overview's input shape; it is ignored.
	rec, body := get(t, mux, "/api/overview?limit=30")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int{1, 2, 3, 4, 5}, storyIDs(t, body, "stories"))
}

func TestTopStories(t *testing.T) {
	mux := newTestMux(t)

	rec, body := get(t, mux, "/api/stories/top?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "top", body["feed"])
	require.Equal(t, []int{1, 2, 3}, storyIDs(t, body, "stories"))

	first := body["stories"].([]any)[0].(map[string]any)
	require.Equal(t, "Story 1", first["title"])
	require.Equal(t, "user1", first["author"])
	require.Equal(t, float64(100), first["score"])
	require.Equal(t, float64(3), first["commentCount"])
	require.Equal(t, "https://news.ycombinator.com/item?id=1", first["hnUrl"])
}

func TestTopStoriesDefaultLimit(t *testing.T) {
	mux := newTestMux(t)

	// Feed has 7 items, fewer than the default of 10; all come back.
	rec, body := get(t, mux, "/api/stories/top")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["stories"], 7)
}

func TestLimitValidation(t *testing.T) {
	mux := newTestMux(t)

	for _, path := range []string{
		"/api/stories/top?limit=0",
		"/api/stories/top?limit=31",
		"/api/stories/top?limit=abc",
		"/api/stories/new?limit=-1",
		"/api/trending?limit=11",
	} {
		rec, _ := get(t, mux, path)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestNewAndBestFeeds(t *testing.T) {
	mux := newTestMux(t)

	rec, body := get(t, mux, "/api/stories/new?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int{7, 6}, storyIDs(t, body, "stories"))

	rec, body = get(t, mux, "/api/stories/best")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int{3, 1}, storyIDs(t, body, "stories"))
}

func TestGetStory(t *testing.T) {
	mux := newTestMux(t)

	rec, body := get(t, mux, "/api/stories/1")
	require.Equal(t, http.StatusOK, rec.Code)

	story := body["story"].(map[string]any)
	require.Equal(t, float64(1), story["id"])

	comments := body["topComments"].([]any)
	require.Len(t, comments, 2)
	require.Equal(t, "commenter100", comments[0].(map[string]any)["author"])
	require.Equal(t, "commenter101", comments[1].(map[string]any)["author"])
}

func TestGetStoryNotFound(t *testing.T) {
	mux := newTestMux(t)

	// Unknown ID and an ID that resolves to a comment both miss.
	for _, path := range []string{"/api/stories/9999", "/api/stories/100"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		require.Contains(t, rec.Body.String(), "story not found")
	}
}

func TestGetStoryInvalidID(t *testing.T) {
	mux := newTestMux(t)
	rec, _ := get(t, mux, "/api/stories/abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrending(t *testing.T) {
	mux := newTestMux(t)

	rec, body := get(t, mux, "/api/trending?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, []int{1, 2, 3, 4, 5}, storyIDs(t, body, "topStories"))
	require.Equal(t, []int{4}, storyIDs(t, body, "askStories"))
	require.Equal(t, []int{5, 6}, storyIDs(t, body, "showStories"))

	// Story 4 has no URL and contributes no domain; www. is stripped.
	domains := body["hotDomains"].([]any)
	require.Equal(t, []any{"example.com", "blog.example.org", "five.test"}, domains)

	// Σ(score+comments) over top: (100+3)+(50+3)+(10+3)+(40+3)+(30+3)
	require.Equal(t, float64(245), body["totalEngagement"])
	// mean(100,50,10,40,30) = 46
	require.Equal(t, float64(46), body["averageScore"])
}

func TestTrendingDefaultLimit(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/trending")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["topStories"], 5)
}

func TestUpstreamFailureIs502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)

	stories := NewStoriesHandler(hn.NewClient(upstream.URL))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stories/top", stories.Top)

	rec, _ := get(t, mux, "/api/stories/top")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}
