// Package seo scores a generated blog against on-page SEO heuristics and
// applies deterministic fixups. This is the only place in the pipeline that
// mutates a blog after generation.
package seo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blogforge/backend/generator"
	"github.com/blogforge/backend/keywords"
	"github.com/blogforge/backend/textclean"
)

const (
	metaMaxLen  = 160
	metaMinLen  = 150
	metaWarnLen = 50

	titleMaxLen = 60

	minHeadings = 3
	maxHeadings = 7

	// Keyword density band considered healthy for generated copy.
	densityFloor   = 0.005
	densityCeiling = 0.025
)

// Report is the scoring breakdown returned alongside the (possibly
// adjusted) blog. Readability is reported on its own 0-100 scale and is not
// folded into the SEO score.
type Report struct {
	Score           int            `json:"seo_score"`
	Readability     int            `json:"readability_score"`
	ComponentScores map[string]int `json:"component_scores"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// Process applies deterministic fixups to the blog in place and scores it.
// Scoring weights: meta description 20, title 15, headings 15, word count
// 25, keyword usage 25. The total is clamped to [0,100].
func Process(blog *generator.Blog, set *keywords.Set) *Report {
	r := &Report{ComponentScores: make(map[string]int)}

	fixMeta(blog, r)

	r.ComponentScores["meta_description"] = scoreMeta(blog.MetaDescription)
	r.ComponentScores["title"] = scoreTitle(blog.Title, r)
	r.ComponentScores["headings"] = scoreHeadings(blog, r)
	r.ComponentScores["word_count"] = scoreWordCount(blog.WordCount(), r)
	r.ComponentScores["keyword_usage"] = scoreKeywords(blog, set, r)
	r.Readability = scoreReadability(fullText(blog), r)

	total := 0
	for _, s := range r.ComponentScores {
		total += s
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	r.Score = total

	return r
}

// fixMeta fills a missing meta description from the introduction and trims
// an overlong one back to the limit at a word boundary.
func fixMeta(blog *generator.Blog, r *Report) {
	if blog.MetaDescription == "" && blog.Introduction != "" {
		blog.MetaDescription = truncateAtWord(blog.Introduction, metaMaxLen-3) + "..."
		r.Warnings = append(r.Warnings, "meta description was missing, generated from introduction")
	}
	if len(blog.MetaDescription) > metaMaxLen {
		blog.MetaDescription = truncateAtWord(blog.MetaDescription, metaMaxLen)
		r.Warnings = append(r.Warnings, "meta description truncated to 160 characters")
	}
	if len(blog.MetaDescription) < metaWarnLen {
		r.Warnings = append(r.Warnings, "meta description is very short")
	}
}

func scoreMeta(meta string) int {
	if n := len(meta); n >= metaMinLen && n <= metaMaxLen {
		return 20
	}
	return 0
}

func scoreTitle(title string, r *Report) int {
	if len(title) == 0 {
		return 0
	}
	if len(title) > titleMaxLen {
		r.Warnings = append(r.Warnings, fmt.Sprintf("title is %d characters, search engines truncate around %d", len(title), titleMaxLen))
		return 0
	}
	return 15
}

func scoreHeadings(blog *generator.Blog, r *Report) int {
	n := len(blog.Sections)
	if n >= minHeadings && n <= maxHeadings {
		return 15
	}
	r.Warnings = append(r.Warnings, fmt.Sprintf("%d section headings, %d-%d recommended", n, minHeadings, maxHeadings))
	return 0
}

// scoreWordCount gives graded credit: full marks for long-form posts,
// partial for medium ones.
func scoreWordCount(words int, r *Report) int {
	switch {
	case words >= 800:
		return 25
	case words >= 500:
		return 15
	case words >= 300:
		return 10
	default:
		r.Warnings = append(r.Warnings, fmt.Sprintf("post is only %d words", words))
		return 0
	}
}

// scoreKeywords awards credit proportional to the fraction of primary
// keywords whose density in the final copy falls inside the healthy band.
func scoreKeywords(blog *generator.Blog, set *keywords.Set, r *Report) int {
	if set == nil || len(set.Primary) == 0 {
		return 0
	}

	text := strings.ToLower(fullText(blog))
	totalWords := len(strings.Fields(text))
	if totalWords == 0 {
		return 0
	}

	inBand := 0
	for _, kw := range set.Primary {
		d := float64(strings.Count(text, strings.ToLower(kw))) / float64(totalWords)
		if d >= densityFloor && d <= densityCeiling {
			inBand++
		} else if d == 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("primary keyword %q not used in the post", kw))
		}
	}

	return int(float64(inBand) / float64(len(set.Primary)) * 25)
}

// scoreReadability grades the copy against comfortable reading bands:
// average sentence length and average word length. Long-winded sentences
// cost more than long words.
func scoreReadability(text string, r *Report) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := textclean.Sentences(text, 1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	avgSentenceWords := float64(len(words)) / float64(len(sentences))
	chars := 0
	for _, w := range words {
		chars += len(w)
	}
	avgWordLen := float64(chars) / float64(len(words))

	score := 100
	switch {
	case avgSentenceWords > 25:
		score -= 30
		r.Warnings = append(r.Warnings, fmt.Sprintf("sentences average %.0f words, readers tire past 25", avgSentenceWords))
	case avgSentenceWords > 20:
		score -= 15
	}
	switch {
	case avgWordLen > 7:
		score -= 20
	case avgWordLen > 6:
		score -= 10
	}

	return score
}

// fullText concatenates every textual field of the blog.
func fullText(blog *generator.Blog) string {
	var b strings.Builder
	b.WriteString(blog.Title)
	b.WriteString(" ")
	b.WriteString(blog.Introduction)
	for _, s := range blog.Sections {
		b.WriteString(" ")
		b.WriteString(s.Heading)
		b.WriteString(" ")
		b.WriteString(s.Content)
	}
	b.WriteString(" ")
	b.WriteString(blog.Conclusion)
	b.WriteString(" ")
	b.WriteString(blog.CTA)
	return b.String()
}

// truncateAtWord cuts text to at most limit bytes, backing up to the
// previous word boundary when one exists and never splitting a rune.
func truncateAtWord(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	cut := text[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:")
}
