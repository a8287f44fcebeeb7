package news

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotDomains(t *testing.T) {
	stories := []Story{
		{URL: "https://www.example.com/a"},
		{URL: "https://blog.example.org/post"},
		{URL: "https://example.com/b"}, // www-stripped duplicate of the first
		{URL: ""},                      // Ask HN style, no URL
		{URL: "https://one.test/x"},
		{URL: "https://two.test/y"},
		{URL: "https://three.test/z"},
		{URL: "https://four.test/w"}, // beyond the cap
	}

	require.Equal(t,
		[]string{"example.com", "blog.example.org", "one.test", "two.test", "three.test"},
		HotDomains(stories))
}

func TestHotDomainsEmpty(t *testing.T) {
	require.Empty(t, HotDomains(nil))
}

func TestTotalEngagement(t *testing.T) {
	stories := []Story{
		{Score: 100, CommentCount: 40},
		{Score: 50, CommentCount: 10},
	}
	require.Equal(t, 200, TotalEngagement(stories))
}

func TestAverageScore(t *testing.T) {
	stories := []Story{{Score: 10}, {Score: 15}}
	avg := AverageScore(stories)
	require.NotNil(t, avg)
	require.Equal(t, 13, *avg) // 12.5 rounds half away from zero
}

func TestAverageScoreNoStories(t *testing.T) {
	require.Nil(t, AverageScore(nil))
}
