package filter

import (
	"testing"

	"ContentAgent/internal/domain"
)

var technicalKeywords = []string{"announcing", "release", "tutorial", "how to"}

func TestIsTechnicalMatchesTitle(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "Announcing the new console"}
	if !IsTechnical(article, technicalKeywords) {
		t.Fatal("expected title keyword to match")
	}
}

func TestIsTechnicalMatchesSummary(t *testing.T) {
	t.Parallel()

	article := domain.Article{
		Title:       "Platform update",
		SummaryText: "A step by step tutorial for the new API.",
	}
	if !IsTechnical(article, technicalKeywords) {
		t.Fatal("expected summary keyword to match")
	}
}

func TestIsTechnicalCaseInsensitive(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "ANNOUNCING general availability"}
	if !IsTechnical(article, technicalKeywords) {
		t.Fatal("expected match to ignore case")
	}
}

func TestIsTechnicalNoMatch(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "Our company culture", SummaryText: "Life at the office."}
	if IsTechnical(article, technicalKeywords) {
		t.Fatal("expected non-technical article to be rejected")
	}
}

func TestIsTechnicalWithoutKeywords(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "Anything"}
	if !IsTechnical(article, nil) {
		t.Fatal("expected everything to pass with no keywords")
	}
}

func TestTechnicalKeepsMatchesInOrder(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "Announcing feature A"},
		{Title: "Team offsite recap"},
		{Title: "Release notes for v2"},
	}

	got := Technical(articles, technicalKeywords)
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Title != "Announcing feature A" || got[1].Title != "Release notes for v2" {
		t.Fatalf("unexpected survivors: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestTechnicalEmptyKeywordsReturnsInput(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "Team offsite recap"},
	}

	got := Technical(articles, nil)
	if len(got) != 1 {
		t.Fatalf("expected input unchanged, got %d articles", len(got))
	}
}
