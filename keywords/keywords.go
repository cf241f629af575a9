// Package keywords ranks candidate phrases from cleaned page text. Phrase
// relevance comes from the embedding backend (phrase-to-document cosine
// similarity); this package owns only the policy on top: candidate
// selection, the primary/secondary split, and density computation.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/blogforge/backend/embed"
	"github.com/blogforge/backend/textclean"
)

// ErrEmptyInput reports text too degenerate to extract keywords from.
var ErrEmptyInput = errors.New("input text empty or too short")

const (
	minInputChars  = 20
	primaryCount   = 5
	secondaryCount = 10
	// Candidates sent to the embedding backend. Bounds the number of
	// embed calls per request.
	maxCandidates = 40
	// Document text is embedded once; longer input adds latency without
	// improving the centroid much.
	maxEmbedChars = 4000
)

// Set is the ranked keyword output consumed by the prompt builder and the
// SEO post-processor.
type Set struct {
	Primary   []string           `json:"primary_keywords"`
	Secondary []string           `json:"secondary_keywords"`
	Density   map[string]float64 `json:"keyword_density"`
}

// All returns primary followed by secondary keywords.
func (s *Set) All() []string {
	out := make([]string, 0, len(s.Primary)+len(s.Secondary))
	out = append(out, s.Primary...)
	out = append(out, s.Secondary...)
	return out
}

// Extractor ranks keywords for a document.
type Extractor struct {
	embedder embed.Embedder
}

// New creates an Extractor backed by the given embedder.
func New(embedder embed.Embedder) *Extractor {
	return &Extractor{embedder: embedder}
}

type candidate struct {
	phrase   string
	count    int
	position int // index of first occurrence, for deterministic tie-breaks
	score    float64
}

// Extract ranks candidate phrases and splits them into primary (top 5) and
// secondary (next 10) sets, with per-keyword density over the input text.
// If the embedding backend is unavailable the ranking degrades to frequency
// order; the pipeline does not fail with the black box.
func (e *Extractor) Extract(ctx context.Context, text string) (*Set, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minInputChars {
		return nil, fmt.Errorf("%w: %d chars", ErrEmptyInput, len(trimmed))
	}

	candidates := collectCandidates(trimmed)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate phrases", ErrEmptyInput)
	}

	if err := e.scoreBySimilarity(ctx, trimmed, candidates); err != nil {
		slog.Warn("embedding backend unavailable, falling back to frequency ranking",
			slog.String("error", err.Error()))
		scoreByFrequency(candidates)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].position != candidates[j].position {
			return candidates[i].position < candidates[j].position
		}
		return candidates[i].phrase < candidates[j].phrase
	})

	set := &Set{Density: make(map[string]float64)}
	for i, c := range candidates {
		switch {
		case i < primaryCount:
			set.Primary = append(set.Primary, c.phrase)
		case i < primaryCount+secondaryCount:
			set.Secondary = append(set.Secondary, c.phrase)
		}
	}

	totalWords := textclean.WordCount(trimmed)
	lower := strings.ToLower(trimmed)
	for _, kw := range set.All() {
		set.Density[kw] = density(lower, kw, totalWords)
	}

	slog.Info("keywords extracted",
		slog.Int("primary", len(set.Primary)),
		slog.Int("secondary", len(set.Secondary)))

	return set, nil
}

// density is occurrences of the keyword surface form (case-insensitive)
// divided by the total word count, clamped to [0,1].
func density(lowerText, keyword string, totalWords int) float64 {
	if totalWords == 0 {
		return 0
	}
	d := float64(strings.Count(lowerText, strings.ToLower(keyword))) / float64(totalWords)
	if d > 1 {
		d = 1
	}
	return d
}

// scoreBySimilarity embeds the document once and each candidate phrase once,
// scoring by cosine similarity to the document vector.
func (e *Extractor) scoreBySimilarity(ctx context.Context, text string, candidates []*candidate) error {
	docText := clip(text, maxEmbedChars)

	docVec, err := e.embedder.Embed(ctx, docText)
	if err != nil {
		return fmt.Errorf("embedding document: %w", err)
	}

	for _, c := range candidates {
		vec, err := e.embedder.Embed(ctx, c.phrase)
		if err != nil {
			return fmt.Errorf("embedding phrase %q: %w", c.phrase, err)
		}
		c.score = embed.Cosine(docVec, vec)
	}

	return nil
}

// clip bounds text to limit bytes without splitting a multi-byte rune.
func clip(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// scoreByFrequency is the deterministic degraded ranking: raw occurrence
// count, with bigrams weighted up since they carry more specificity.
func scoreByFrequency(candidates []*candidate) {
	for _, c := range candidates {
		weight := 1.0
		if strings.Contains(c.phrase, " ") {
			weight = 1.5
		}
		c.score = float64(c.count) * weight
	}
}

// collectCandidates tokenizes the text and builds unigram and bigram
// candidates, stopword-filtered, capped at maxCandidates by frequency.
// Bigrams are only kept when their surface form actually occurs in the
// text, so a phrase spanning a sentence boundary is never a candidate.
func collectCandidates(text string) []*candidate {
	words := tokenize(text)
	lower := strings.ToLower(text)
	seen := make(map[string]*candidate)

	add := func(phrase string, pos int) {
		if c, ok := seen[phrase]; ok {
			c.count++
			return
		}
		seen[phrase] = &candidate{phrase: phrase, count: 1, position: pos}
	}

	for i, w := range words {
		if stopwords[w] || len(w) < 3 {
			continue
		}
		add(w, i)
		if i+1 < len(words) {
			next := words[i+1]
			if !stopwords[next] && len(next) >= 3 && strings.Contains(lower, w+" "+next) {
				add(w+" "+next, i)
			}
		}
	}

	out := make([]*candidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}

	// Keep the most frequent candidates for embedding.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		if out[i].position != out[j].position {
			return out[i].position < out[j].position
		}
		return out[i].phrase < out[j].phrase
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}

	return out
}

// tokenize lowercases and splits text into word tokens, dropping
// punctuation-only fragments.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"()[]-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
