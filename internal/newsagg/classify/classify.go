// Package classify assigns every article to exactly one topic category using
// ordered keyword patterns.
package classify

import (
	"regexp"
	"strings"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/sources"
)

// Category represents an article classification.
type Category string

const (
	Politics      Category = "politics"
	Sports        Category = "sports"
	Entertainment Category = "entertainment"
	Events        Category = "events"
	Technology    Category = "technology"
	Business      Category = "business"
	Health        Category = "health"
	General       Category = "general"
)

type rule struct {
	category Category
	pattern  *regexp.Regexp
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{Politics, wordPattern(
		"senate", "senator", "congress", "congressman", "congresswoman", "governor", "legislature",
		"lawmaker", "lawmakers", "election", "elections", "ballot", "vote", "voters", "campaign",
		"democrat", "democrats", "republican", "republicans", "gop", "statehouse", "mayor",
		"city council", "white house", "president", "bill", "legislation", "politics", "political",
	)},
	{Sports, wordPattern(
		"touchdown", "quarterback", "nfl", "nba", "mlb", "nhl", "ncaa", "buckeyes", "browns",
		"bengals", "cavaliers", "cavs", "guardians", "reds", "blue jackets", "football",
		"basketball", "baseball", "hockey", "soccer", "coach", "playoff", "playoffs", "season",
		"championship", "tournament", "game", "scored", "athlete", "athletes",
	)},
	{Entertainment, wordPattern(
		"movie", "movies", "film", "actor", "actress", "celebrity", "music", "album", "concert tour",
		"singer", "band", "netflix", "hollywood", "tv show", "television", "series premiere",
		"grammy", "oscar", "emmy", "box office", "streaming",
	)},
	{Events, wordPattern(
		"festival", "fair", "parade", "concert", "exhibit", "exhibition", "conference", "expo",
		"fundraiser", "celebration", "ceremony", "event", "events", "tickets", "this weekend",
	)},
	{Technology, wordPattern(
		"technology", "tech", "software", "startup", "artificial intelligence", "ai", "chip",
		"chips", "semiconductor", "intel", "data center", "cybersecurity", "hack", "hackers",
		"app", "internet", "broadband", "robot", "robotics", "electric vehicle", "ev",
	)},
	{Business, wordPattern(
		"business", "economy", "economic", "market", "markets", "stock", "stocks", "shares",
		"company", "companies", "jobs", "layoffs", "hiring", "earnings", "revenue", "profit",
		"investment", "investors", "bank", "retail", "inflation", "merger", "acquisition",
	)},
	{Health, wordPattern(
		"health", "hospital", "hospitals", "doctor", "doctors", "nurse", "patients", "disease",
		"virus", "covid", "flu", "vaccine", "vaccines", "outbreak", "medical", "medicine",
		"cancer", "mental health", "overdose", "clinic",
	)},
}

// wordPattern compiles keywords and phrases into one case-insensitive
// word-boundary alternation.
func wordPattern(keywords ...string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Text returns the category for free text. It never fails: text matching no
// pattern, including empty text, is General.
func Text(text string) Category {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.pattern.MatchString(lower) {
			return r.category
		}
	}
	return General
}

// Categorize returns the category of an article from its title, description
// and content.
func Categorize(a sources.Article) Category {
	return Text(a.Title + " " + a.Description + " " + a.Content)
}
