package news

import (
	"math"
	"net/url"
	"strings"
)

const maxHotDomains = 5

// HotDomains returns the distinct hostnames of story URLs, any "www."
// prefix stripped, in first-appearance order, capped at 5 entries.
// Stories without a parseable URL are skipped.
func HotDomains(stories []Story) []string {
	seen := make(map[string]bool)
	domains := make([]string, 0, maxHotDomains)
	for _, s := range stories {
		if s.URL == "" {
			continue
		}
		u, err := url.Parse(s.URL)
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := strings.TrimPrefix(u.Hostname(), "www.")
		if seen[host] {
			continue
		}
		seen[host] = true
		domains = append(domains, host)
		if len(domains) == maxHotDomains {
			break
		}
	}
	return domains
}

// TotalEngagement sums score plus comment count across stories.
func TotalEngagement(stories []Story) int {
	total := 0
	for _, s := range stories {
		total += s.Score + s.CommentCount
	}
	return total
}

// AverageScore returns the rounded mean score, or nil when there are no
// stories (the field is then omitted rather than dividing by zero).
func AverageScore(stories []Story) *int {
	if len(stories) == 0 {
		return nil
	}
	sum := 0
	for _, s := range stories {
		sum += s.Score
	}
	avg := int(math.Round(float64(sum) / float64(len(stories))))
	return &avg
}
