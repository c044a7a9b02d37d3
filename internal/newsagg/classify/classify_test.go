package classify

import (
	"testing"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/sources"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		article sources.Article
		want    Category
	}{
		{"politics", sources.Article{Title: "Senate passes state budget"}, Politics},
		{"sports", sources.Article{Title: "Buckeyes rally late", Description: "A fourth-quarter touchdown sealed it"}, Sports},
		{"entertainment", sources.Article{Title: "New movie filmed in Cleveland"}, Entertainment},
		{"events", sources.Article{Title: "Ohio State Fair opens Wednesday"}, Events},
		{"technology", sources.Article{Title: "Intel breaks ground on chip factory near Columbus"}, Technology},
		{"business", sources.Article{Title: "Stocks rally as inflation cools"}, Business},
		{"health", sources.Article{Title: "Hospital reports flu outbreak"}, Health},
		{"content only", sources.Article{Content: "Doctors urge residents to get a vaccine"}, Health},
		{"general", sources.Article{Title: "A quiet afternoon along the river"}, General},
		{"empty", sources.Article{}, General},
		{"case insensitive", sources.Article{Title: "GOVERNOR SIGNS ORDER"}, Politics},
		{"word boundary", sources.Article{Title: "Rain expected in Dayton"}, General},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.article); got != tt.want {
				t.Errorf("Categorize(%+v) = %s, want %s", tt.article, got, tt.want)
			}
		})
	}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	a := sources.Article{
		Title:       "Touchdown celebration at the senate",
		Description: "A senate hearing interrupted by a touchdown replay",
	}
	if got := Categorize(a); got != Politics {
		t.Fatalf("expected politics to take precedence over sports, got %s", got)
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	a := sources.Article{Title: "Browns sign quarterback", Description: "Contract talks with the company"}
	first := Categorize(a)
	for i := 0; i < 50; i++ {
		if got := Categorize(a); got != first {
			t.Fatalf("run %d: got %s, first run %s", i, got, first)
		}
	}
}

func TestCategorize_AlwaysInSet(t *testing.T) {
	valid := map[Category]bool{General: true}
	for _, r := range rules {
		valid[r.category] = true
	}
	inputs := []string{"", "   ", "senate", "touchdown", "%%%", "日本語のニュース", "tickets on sale"}
	for _, in := range inputs {
		if got := Text(in); !valid[got] {
			t.Errorf("Text(%q) = %q, not a known category", in, got)
		}
	}
}

func TestRules_PrecedenceOrder(t *testing.T) {
	want := []Category{Politics, Sports, Entertainment, Events, Technology, Business, Health}
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.category != want[i] {
			t.Errorf("rule %d = %s, want %s", i, r.category, want[i])
		}
	}
}
