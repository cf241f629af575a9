// Package topics produces the semantic read of a page: an extractive
// summary, a coarse intent classification, and a topic list. Sentence
// salience comes from the embedding backend; intent is a deterministic rule
// table, not a model.
package topics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/blogforge/backend/embed"
	"github.com/blogforge/backend/textclean"
)

// ErrEmptyInput reports text too degenerate to analyze.
var ErrEmptyInput = errors.New("input text empty or too short")

// Intent is the coarse classification of a page's purpose.
type Intent string

const (
	IntentService       Intent = "service"
	IntentProduct       Intent = "product"
	IntentBlog          Intent = "blog"
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentUnknown       Intent = "unknown"
)

// intentRules maps each intent to its trigger vocabulary. Order is the
// fixed tie-break precedence.
var intentRules = []struct {
	intent Intent
	terms  []string
}{
	{IntentService, []string{"service", "solution", "consulting", "help", "support", "provide", "offer"}},
	{IntentProduct, []string{"buy", "shop", "product", "price", "purchase", "store", "cart", "order"}},
	{IntentBlog, []string{"article", "blog", "post", "guide", "tutorial", "learn", "read"}},
	{IntentInformational, []string{"about", "information", "learn", "understand", "explain", "what is"}},
	{IntentCommercial, []string{"pricing", "plans", "subscribe", "premium", "pro", "enterprise"}},
}

const (
	minInputChars    = 20
	minSentenceLen   = 20
	summarySentences = 3
	topicCount       = 5
)

// Analysis is the topic analyzer's output, read-only downstream.
type Analysis struct {
	Summary       string   `json:"summary"`
	Intent        Intent   `json:"intent"`
	Topics        []string `json:"topics"`
	ContentLength int      `json:"content_length"`
}

// Analyzer computes topic analyses.
type Analyzer struct {
	embedder embed.Embedder
}

// New creates an Analyzer backed by the given embedder.
func New(embedder embed.Embedder) *Analyzer {
	return &Analyzer{embedder: embedder}
}

// Analyze builds the summary, intent and topic list for the given text.
// topicSource, when non-empty, supplies the topic phrases (normally the
// primary keywords from the keyword stage); otherwise capitalized entities
// from the text are used.
func (a *Analyzer) Analyze(ctx context.Context, text, title string, topicSource []string) (*Analysis, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minInputChars {
		return nil, fmt.Errorf("%w: %d chars", ErrEmptyInput, len(trimmed))
	}

	analysis := &Analysis{
		Summary:       a.summarize(ctx, trimmed),
		Intent:        detectIntent(trimmed, title),
		Topics:        pickTopics(topicSource, trimmed),
		ContentLength: len(trimmed),
	}

	slog.Info("topic analysis complete",
		slog.String("intent", string(analysis.Intent)),
		slog.Int("topics", len(analysis.Topics)))

	return analysis, nil
}

// summarize selects the highest-salience sentences by similarity to the
// document centroid, then emits them in original document order. When the
// embedding backend is unavailable the leading sentences are used instead.
func (a *Analyzer) summarize(ctx context.Context, text string) string {
	sentences := textclean.Sentences(text, minSentenceLen)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= summarySentences {
		return strings.Join(sentences, ". ") + "."
	}

	selected, err := a.salientIndexes(ctx, sentences)
	if err != nil {
		slog.Warn("embedding backend unavailable, summary falls back to leading sentences",
			slog.String("error", err.Error()))
		selected = []int{0, 1, 2}
	}

	parts := make([]string, 0, len(selected))
	for _, idx := range selected {
		parts = append(parts, sentences[idx])
	}
	return strings.Join(parts, ". ") + "."
}

// salientIndexes returns the document-order indexes of the top sentences by
// centroid similarity.
func (a *Analyzer) salientIndexes(ctx context.Context, sentences []string) ([]int, error) {
	vectors := make([][]float64, len(sentences))
	for i, s := range sentences {
		vec, err := a.embedder.Embed(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("embedding sentence %d: %w", i, err)
		}
		vectors[i] = vec
	}

	centroid := embed.Centroid(vectors)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, vec := range vectors {
		ranked[i] = scored{idx: i, score: embed.Cosine(centroid, vec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].idx < ranked[j].idx
	})

	selected := make([]int, 0, summarySentences)
	for _, r := range ranked[:summarySentences] {
		selected = append(selected, r.idx)
	}
	sort.Ints(selected) // original document order, not salience order
	return selected, nil
}

// detectIntent counts rule vocabulary hits over title+text. The highest
// count wins; ties resolve by rule-table order; zero hits means unknown.
func detectIntent(text, title string) Intent {
	haystack := strings.ToLower(text + " " + title)

	best := IntentUnknown
	bestScore := 0
	for _, rule := range intentRules {
		score := 0
		for _, term := range rule.terms {
			score += strings.Count(haystack, term)
		}
		if score > bestScore {
			best = rule.intent
			bestScore = score
		}
	}

	return best
}

// pickTopics prefers the supplied source phrases (keyword stage output) and
// falls back to capitalized entities from the text. Topics are deduplicated
// case-insensitively, capped at topicCount.
func pickTopics(source []string, text string) []string {
	candidates := source
	if len(candidates) == 0 {
		candidates = capitalizedEntities(text)
	}

	seen := make(map[string]bool)
	var topics []string
	for _, c := range candidates {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		topics = append(topics, strings.TrimSpace(c))
		if len(topics) == topicCount {
			break
		}
	}
	return topics
}

// capitalizedEntities collects multi-use capitalized words as a crude
// entity list, ordered by frequency.
func capitalizedEntities(text string) []string {
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, f := range strings.Fields(text) {
		f = strings.Trim(f, ".,!?;:'\"()[]")
		if len(f) < 3 || f[0] < 'A' || f[0] > 'Z' {
			continue
		}
		if _, ok := counts[f]; !ok {
			order[f] = i
		}
		counts[f]++
	}

	entities := make([]string, 0, len(counts))
	for e := range counts {
		entities = append(entities, e)
	}
	sort.SliceStable(entities, func(i, j int) bool {
		if counts[entities[i]] != counts[entities[j]] {
			return counts[entities[i]] > counts[entities[j]]
		}
		return order[entities[i]] < order[entities[j]]
	})
	return entities
}
