package seo

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/blogforge/backend/generator"
	"github.com/blogforge/backend/keywords"
)

func goodBlog() *generator.Blog {
	section := func(h string) generator.Section {
		return generator.Section{
			Heading: h,
			Content: "cloud cost matters. " + strings.Repeat("Teams review spending together every month and adjust plans quickly. ", 25),
		}
	}
	return &generator.Blog{
		Title:           "Controlling Cloud Cost Without Slowing Down",
		MetaDescription: strings.Repeat("x", 155),
		Introduction:    "Cloud cost grows quietly until finance asks engineering why the bill doubled last quarter.",
		Sections:        []generator.Section{section("Visibility First"), section("Tag Everything"), section("Shared Budgets")},
		Conclusion:      "Cost control is a habit, not a one-off project for any team.",
		CTA:             "Talk to us about a cloud cost review.",
		Tags:            []string{"cloud", "finops"},
	}
}

func TestProcessScoreBounds(t *testing.T) {
	set := &keywords.Set{Primary: []string{"cloud cost", "visibility"}}
	r := Process(goodBlog(), set)

	if r.Score < 0 || r.Score > 100 {
		t.Fatalf("score = %d, out of [0,100]", r.Score)
	}
	for name, s := range r.ComponentScores {
		if s < 0 {
			t.Errorf("component %q = %d, negative", name, s)
		}
	}
}

func TestProcessFullMarks(t *testing.T) {
	set := &keywords.Set{Primary: []string{"cloud cost"}}
	blog := goodBlog()
	r := Process(blog, set)

	if r.ComponentScores["meta_description"] != 20 {
		t.Errorf("meta score = %d, want 20 for a 155-char description", r.ComponentScores["meta_description"])
	}
	if r.ComponentScores["title"] != 15 {
		t.Errorf("title score = %d, want 15 for a short title", r.ComponentScores["title"])
	}
	if r.ComponentScores["headings"] != 15 {
		t.Errorf("headings score = %d, want 15 for 3 sections", r.ComponentScores["headings"])
	}
	if r.ComponentScores["word_count"] != 25 {
		t.Errorf("word count score = %d for %d words, want 25", r.ComponentScores["word_count"], blog.WordCount())
	}
	if r.ComponentScores["keyword_usage"] != 25 {
		t.Errorf("keyword score = %d, want 25 for an in-band primary keyword", r.ComponentScores["keyword_usage"])
	}
}

func TestProcessTruncatesMeta(t *testing.T) {
	blog := goodBlog()
	blog.MetaDescription = strings.Repeat("budget visibility matters ", 20)
	r := Process(blog, nil)

	if len(blog.MetaDescription) > 160 {
		t.Fatalf("meta not truncated: %d chars", len(blog.MetaDescription))
	}
	if strings.HasSuffix(blog.MetaDescription, " ") {
		t.Error("truncation left trailing space")
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "truncated") {
			found = true
		}
	}
	if !found {
		t.Error("no truncation warning recorded")
	}
}

func TestProcessGeneratesMissingMeta(t *testing.T) {
	blog := goodBlog()
	blog.MetaDescription = ""
	Process(blog, nil)

	if blog.MetaDescription == "" {
		t.Fatal("missing meta description not generated")
	}
	if !strings.HasPrefix(blog.MetaDescription, "Cloud cost grows quietly") {
		t.Errorf("generated meta should come from the introduction: %q", blog.MetaDescription)
	}
}

func TestTruncateAtWordPreservesRunes(t *testing.T) {
	// A space-free run of two-byte runes exercises the cut with no word
	// boundary to back up to.
	got := truncateAtWord(strings.Repeat("é", 200), 161)
	if len(got) > 161 {
		t.Fatalf("got %d bytes, want <= 161", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
}

func TestProcessShortMetaWarns(t *testing.T) {
	blog := goodBlog()
	blog.MetaDescription = "Too short."
	r := Process(blog, nil)

	if r.ComponentScores["meta_description"] != 0 {
		t.Errorf("short meta scored %d, want 0", r.ComponentScores["meta_description"])
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "very short") {
			found = true
		}
	}
	if !found {
		t.Error("no short-meta warning recorded")
	}
}

func TestProcessReadability(t *testing.T) {
	r := Process(goodBlog(), nil)
	if r.Readability <= 0 || r.Readability > 100 {
		t.Fatalf("readability = %d, out of (0,100]", r.Readability)
	}
}

func TestScoreReadabilityBands(t *testing.T) {
	short := strings.Repeat("Tags turn invoices into answers. ", 30)
	rambling := strings.Repeat("cloud spending review meetings ", 40) + "."

	rShort := &Report{}
	rLong := &Report{}
	shortScore := scoreReadability(short, rShort)
	longScore := scoreReadability(rambling, rLong)

	if shortScore != 100 {
		t.Errorf("short-sentence copy scored %d, want 100", shortScore)
	}
	if longScore >= shortScore {
		t.Errorf("rambling copy scored %d, short copy %d; want lower", longScore, shortScore)
	}
	if len(rLong.Warnings) == 0 {
		t.Error("no warning for an overlong average sentence")
	}
}

func TestProcessGradedWordCount(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{900, 25},
		{600, 15},
		{350, 10},
		{100, 0},
	}
	for _, tt := range tests {
		r := &Report{}
		if got := scoreWordCount(tt.words, r); got != tt.want {
			t.Errorf("scoreWordCount(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestProcessKeywordFraction(t *testing.T) {
	blog := goodBlog()
	// "cloud cost" sits inside the band; "quantum basket weaving" never appears.
	set := &keywords.Set{Primary: []string{"cloud cost", "quantum basket weaving"}}
	r := Process(blog, set)

	if got := r.ComponentScores["keyword_usage"]; got != 12 {
		t.Errorf("keyword score = %d, want 12 (one of two keywords in band)", got)
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "quantum basket weaving") {
			found = true
		}
	}
	if !found {
		t.Error("unused keyword not surfaced as a warning")
	}
}
