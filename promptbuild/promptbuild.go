// Package promptbuild renders generation prompts. Building a prompt is pure
// and deterministic: same analysis inputs and options, same string out. All
// LLM and network concerns live in the generator.
package promptbuild

import (
	"fmt"
	"strings"

	"github.com/blogforge/backend/keywords"
	"github.com/blogforge/backend/topics"
)

// Tone selects the writing voice requested from the model.
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneCasual         Tone = "casual"
	ToneTechnical      Tone = "technical"
	ToneConversational Tone = "conversational"
)

// Word count bounds for a generated post. Requests outside the band are
// clamped, not rejected.
const (
	DefaultWordCount = 800
	MinWordCount     = 300
	MaxWordCount     = 2000
)

var validTones = map[Tone]bool{
	ToneProfessional:   true,
	ToneCasual:         true,
	ToneTechnical:      true,
	ToneConversational: true,
}

// Options are the caller-facing generation knobs. The zero value asks for a
// professional post of the default length with a meta description.
type Options struct {
	Tone      Tone
	WordCount int
	// OmitMeta drops the meta-description instruction from the prompt.
	// The zero value keeps it, matching the request default.
	OmitMeta bool
}

// Normalize fills defaults, coerces unknown tones to professional and
// clamps the word count into [MinWordCount, MaxWordCount].
func (o Options) Normalize() Options {
	if !validTones[o.Tone] {
		o.Tone = ToneProfessional
	}
	switch {
	case o.WordCount <= 0:
		o.WordCount = DefaultWordCount
	case o.WordCount < MinWordCount:
		o.WordCount = MinWordCount
	case o.WordCount > MaxWordCount:
		o.WordCount = MaxWordCount
	}
	return o
}

// densityTarget suggests a keyword density band for the model based on the
// requested length. Longer posts can absorb more repetition.
func densityTarget(wordCount int) string {
	switch {
	case wordCount >= 1500:
		return "2.0%"
	case wordCount >= 800:
		return "1.5%"
	default:
		return "1.0%"
	}
}

// Build renders the blog generation prompt from the analysis outputs.
func Build(set *keywords.Set, analysis *topics.Analysis, opts Options) string {
	opts = opts.Normalize()

	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert content writer. Write a %s blog post of approximately %d words.\n\n",
		opts.Tone, opts.WordCount)

	b.WriteString("SOURCE ANALYSIS\n")
	fmt.Fprintf(&b, "Summary: %s\n", analysis.Summary)
	fmt.Fprintf(&b, "Page intent: %s\n", analysis.Intent)
	if len(analysis.Topics) > 0 {
		fmt.Fprintf(&b, "Key topics: %s\n", strings.Join(analysis.Topics, ", "))
	}
	b.WriteString("\n")

	b.WriteString("KEYWORD REQUIREMENTS\n")
	fmt.Fprintf(&b, "Primary keywords (use naturally, target density around %s): %s\n",
		densityTarget(opts.WordCount), strings.Join(set.Primary, ", "))
	if len(set.Secondary) > 0 {
		fmt.Fprintf(&b, "Secondary keywords (weave in where natural): %s\n", strings.Join(set.Secondary, ", "))
	}
	b.WriteString("\n")

	b.WriteString("STRUCTURE REQUIREMENTS\n")
	b.WriteString("- An engaging title containing the top primary keyword\n")
	if !opts.OmitMeta {
		b.WriteString("- A meta description between 150 and 160 characters\n")
	}
	b.WriteString(`- An introduction that hooks the reader
- 3 to 6 body sections, each with a descriptive heading
- A conclusion that summarizes the key points
- A call to action matching the page intent
- 3 to 6 topical tags

`)

	b.WriteString("Respond with ONLY a JSON object in exactly this shape, no markdown fences, no commentary:\n")
	b.WriteString("{\n  \"title\": \"...\",\n")
	if !opts.OmitMeta {
		b.WriteString("  \"meta_description\": \"...\",\n")
	}
	b.WriteString(`  "introduction": "...",
  "sections": [{"heading": "...", "content": "..."}],
  "conclusion": "...",
  "cta": "...",
  "tags": ["..."]
}`)

	return b.String()
}
