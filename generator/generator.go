// Package generator turns a prompt into a structured blog post via an LLM
// provider. The provider boundary is the only retried operation in the
// pipeline; everything upstream is deterministic and everything downstream
// works on the parsed Blog.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrProviderExhausted reports that every retry attempt against the
	// LLM provider failed.
	ErrProviderExhausted = errors.New("llm provider exhausted all attempts")
	// ErrMalformedOutput reports a provider response that could not be
	// parsed into a valid blog. It is never retried; a model that returns
	// garbage once will usually return garbage again.
	ErrMalformedOutput = errors.New("llm output malformed")
)

// Section is one body section of a generated blog.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Blog is the parsed generation result. Only the SEO post-processor
// mutates it after parsing.
type Blog struct {
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Introduction    string    `json:"introduction"`
	Sections        []Section `json:"sections"`
	Conclusion      string    `json:"conclusion"`
	CTA             string    `json:"cta"`
	Tags            []string  `json:"tags"`
}

// WordCount counts words across all textual fields.
func (b *Blog) WordCount() int {
	n := len(strings.Fields(b.Title)) +
		len(strings.Fields(b.Introduction)) +
		len(strings.Fields(b.Conclusion)) +
		len(strings.Fields(b.CTA))
	for _, s := range b.Sections {
		n += len(strings.Fields(s.Heading)) + len(strings.Fields(s.Content))
	}
	return n
}

// Provider is a single LLM completion backend.
type Provider interface {
	// Complete returns the raw model output for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Model names the configured model, for cost reporting.
	Model() string
}

// ProviderError normalizes provider failures so the retry loop can decide
// without knowing which SDK produced them.
type ProviderError struct {
	Status    int
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d, transient %v): %v", e.Status, e.Transient, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// transient reports whether an error is worth retrying. Unwrapped
// non-ProviderError failures (network resets and the like) are treated as
// transient; only errors known to be permanent stop the loop early.
func transient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// RetryPolicy controls the generation retry loop.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy matches the provider guidance of three attempts with
// exponential backoff.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// delay returns the backoff before the given retry (1-based attempt that
// just failed): base, 2*base, 4*base, ...
func (p RetryPolicy) delay(attempt int) time.Duration {
	return p.BaseDelay << (attempt - 1)
}

// Result is the generation output with its accounting.
type Result struct {
	Blog        *Blog
	Model       string
	Cost        float64
	PromptChars int
	OutputChars int
	Attempts    int
}

// Generator runs prompts against a provider with retries.
type Generator struct {
	provider    Provider
	policy      RetryPolicy
	maxSections int
}

// New creates a Generator. maxSections caps the section count of parsed
// blogs; oversized outputs are trimmed, not rejected.
func New(provider Provider, policy RetryPolicy, maxSections int) *Generator {
	if policy.Attempts <= 0 {
		policy = DefaultRetryPolicy
	}
	return &Generator{provider: provider, policy: policy, maxSections: maxSections}
}

// Generate completes the prompt and parses the output into a Blog. Transient
// provider failures are retried with exponential backoff up to the policy's
// attempt budget; a parseable-but-invalid response fails immediately with
// ErrMalformedOutput. On failure the returned Result carries no blog but
// still reports how many provider calls were spent, so callers can account
// for retries.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Result, error) {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= g.policy.Attempts; attempt++ {
		attempts = attempt
		raw, err := g.provider.Complete(ctx, prompt)
		if err == nil {
			blog, perr := g.parse(raw)
			if perr != nil {
				return &Result{Model: g.provider.Model(), Attempts: attempts}, perr
			}
			return &Result{
				Blog:        blog,
				Model:       g.provider.Model(),
				Cost:        completionCost(g.provider.Model(), len(prompt), len(raw)),
				PromptChars: len(prompt),
				OutputChars: len(raw),
				Attempts:    attempts,
			}, nil
		}

		lastErr = err
		if !transient(err) {
			slog.Error("llm call failed permanently",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			break
		}

		slog.Warn("llm call failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < g.policy.Attempts {
			select {
			case <-time.After(g.policy.delay(attempt)):
			case <-ctx.Done():
				return &Result{Model: g.provider.Model(), Attempts: attempts},
					fmt.Errorf("%w: %v", ErrProviderExhausted, ctx.Err())
			}
		}
	}

	return &Result{Model: g.provider.Model(), Attempts: attempts},
		fmt.Errorf("%w: %v", ErrProviderExhausted, lastErr)
}

// parse strips markdown fences, unmarshals the model output and validates
// the minimum structure of a usable post.
func (g *Generator) parse(raw string) (*Blog, error) {
	cleaned := stripFences(raw)

	var blog Blog
	if err := json.Unmarshal([]byte(cleaned), &blog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if blog.Title == "" || blog.Introduction == "" {
		return nil, fmt.Errorf("%w: missing title or introduction", ErrMalformedOutput)
	}
	if len(blog.Sections) < 2 {
		return nil, fmt.Errorf("%w: %d sections, need at least 2", ErrMalformedOutput, len(blog.Sections))
	}
	if g.maxSections > 0 && len(blog.Sections) > g.maxSections {
		blog.Sections = blog.Sections[:g.maxSections]
	}

	return &blog, nil
}

// stripFences removes a wrapping markdown code block, which several models
// add despite instructions not to.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
