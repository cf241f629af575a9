// Package pipeline sequences the generation stages: validate, extract,
// clean, keywords, topics, prompt, generate, seo, images, render. The first
// stage failure aborts the run; no partial results are returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/blogforge/backend/extractor"
	"github.com/blogforge/backend/generator"
	"github.com/blogforge/backend/images"
	"github.com/blogforge/backend/keywords"
	"github.com/blogforge/backend/promptbuild"
	"github.com/blogforge/backend/seo"
	"github.com/blogforge/backend/stats"
	"github.com/blogforge/backend/textclean"
	"github.com/blogforge/backend/topics"
	"github.com/blogforge/backend/validator"
)

// Request is the caller-facing generation request. WordCount outside
// [300,2000] is clamped during prompt building; IncludeMeta is a pointer so
// an absent field defaults to true.
type Request struct {
	URL         string `json:"url" binding:"required"`
	Tone        string `json:"tone"`
	WordCount   int    `json:"word_count"`
	IncludeMeta *bool  `json:"include_meta"`
}

// Response is the full generation result.
type Response struct {
	Success        bool             `json:"success"`
	Blog           *generator.Blog  `json:"blog,omitempty"`
	Markdown       string           `json:"markdown,omitempty"`
	HTMLPreview    string           `json:"html_preview,omitempty"`
	Keywords       *keywords.Set    `json:"keywords,omitempty"`
	Analysis       *topics.Analysis `json:"analysis,omitempty"`
	SEO            *seo.Report      `json:"seo,omitempty"`
	Images         *images.Set      `json:"images,omitempty"`
	WordCount      int              `json:"word_count,omitempty"`
	Model          string           `json:"model,omitempty"`
	Cost           float64          `json:"generation_cost,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at,omitempty"`
	ProcessingTime float64          `json:"processing_time,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// Stage interfaces let handlers and tests swap any step.
type (
	URLValidator interface {
		Validate(ctx context.Context, rawURL string) error
	}
	ContentExtractor interface {
		Extract(ctx context.Context, rawURL string) (*extractor.Content, error)
	}
	KeywordExtractor interface {
		Extract(ctx context.Context, text string) (*keywords.Set, error)
	}
	TopicAnalyzer interface {
		Analyze(ctx context.Context, text, title string, topicSource []string) (*topics.Analysis, error)
	}
	BlogGenerator interface {
		Generate(ctx context.Context, prompt string) (*generator.Result, error)
	}
	ImageFetcher interface {
		Fetch(ctx context.Context, primaryKeywords []string) (*images.Set, error)
	}
	Renderer interface {
		Markdown(blog *generator.Blog) string
		HTML(blog *generator.Blog) string
	}
)

// Pipeline wires the stages together.
type Pipeline struct {
	validator URLValidator
	extractor ContentExtractor
	keywords  KeywordExtractor
	topics    TopicAnalyzer
	generator BlogGenerator
	images    ImageFetcher
	renderer  Renderer
	storage   *stats.Storage
}

// Config collects the stage implementations for New. Images, renderer and
// storage are optional.
type Config struct {
	Validator URLValidator
	Extractor ContentExtractor
	Keywords  KeywordExtractor
	Topics    TopicAnalyzer
	Generator BlogGenerator
	Images    ImageFetcher
	Renderer  Renderer
	Storage   *stats.Storage
}

// New assembles a Pipeline from its stages.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		validator: cfg.Validator,
		extractor: cfg.Extractor,
		keywords:  cfg.Keywords,
		topics:    cfg.Topics,
		generator: cfg.Generator,
		images:    cfg.Images,
		renderer:  cfg.Renderer,
		storage:   cfg.Storage,
	}
}

// Run executes the full pipeline for one request.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, retries, err := p.run(ctx, req, start)

	if p.storage != nil {
		rec := stats.Record{
			Failed:       err != nil,
			Retries:      retries,
			ProcessingMS: time.Since(start).Milliseconds(),
		}
		if resp != nil {
			rec.CostUSD = resp.Cost
		}
		p.storage.RecordGeneration(rec)
	}

	return resp, err
}

func (p *Pipeline) run(ctx context.Context, req Request, start time.Time) (*Response, int, error) {
	if err := p.validator.Validate(ctx, req.URL); err != nil {
		return nil, 0, fmt.Errorf("validate: %w", err)
	}

	content, err := p.extractor.Extract(ctx, req.URL)
	if err != nil {
		return nil, 0, fmt.Errorf("extract: %w", err)
	}

	cleaned := textclean.Clean(content.Text)

	set, err := p.keywords.Extract(ctx, cleaned)
	if err != nil {
		return nil, 0, fmt.Errorf("keywords: %w", err)
	}

	analysis, err := p.topics.Analyze(ctx, cleaned, content.Title, set.Primary)
	if err != nil {
		return nil, 0, fmt.Errorf("topics: %w", err)
	}

	prompt := promptbuild.Build(set, analysis, promptbuild.Options{
		Tone:      promptbuild.Tone(req.Tone),
		WordCount: req.WordCount,
		OmitMeta:  req.IncludeMeta != nil && !*req.IncludeMeta,
	})

	result, err := p.generator.Generate(ctx, prompt)
	retries := 0
	if result != nil && result.Attempts > 1 {
		retries = result.Attempts - 1
	}
	if err != nil {
		return nil, retries, fmt.Errorf("generate: %w", err)
	}

	report := seo.Process(result.Blog, set)

	resp := &Response{
		Success:        true,
		Blog:           result.Blog,
		Keywords:       set,
		Analysis:       analysis,
		SEO:            report,
		WordCount:      result.Blog.WordCount(),
		Model:          result.Model,
		Cost:           result.Cost,
		GeneratedAt:    time.Now().UTC(),
		ProcessingTime: time.Since(start).Seconds(),
	}

	// Images are best-effort and never fail the run.
	if p.images != nil {
		if imgSet, imgErr := p.images.Fetch(ctx, set.Primary); imgErr == nil {
			resp.Images = imgSet
		}
	}

	if p.renderer != nil {
		resp.Markdown = p.renderer.Markdown(result.Blog)
		resp.HTMLPreview = p.renderer.HTML(result.Blog)
	}

	slog.Info("pipeline complete",
		slog.String("url", req.URL),
		slog.Int("word_count", resp.WordCount),
		slog.Int("seo_score", report.Score),
		slog.Int("provider_retries", retries),
		slog.Float64("elapsed_s", resp.ProcessingTime))

	return resp, retries, nil
}

// StatusFor maps a pipeline error to the HTTP status the handler should
// return: caller-side input problems are 400, upstream provider failures
// are 502, everything else is 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, validator.ErrMalformedURL),
		errors.Is(err, validator.ErrUnreachable),
		errors.Is(err, extractor.ErrNoContent),
		errors.Is(err, keywords.ErrEmptyInput),
		errors.Is(err, topics.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrProviderExhausted),
		errors.Is(err, generator.ErrMalformedOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
