// Package extractor fetches a page and pulls out its main textual content.
// Two strategies are tried in order: an article-focused readability parse,
// then a general goquery paragraph harvest. The first strategy that yields
// enough text wins; "enough" is an explicit character threshold, not merely
// "didn't fail".
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ErrNoContent reports that every extraction strategy came up short.
var ErrNoContent = errors.New("no usable content")

// Pages larger than this are truncated at the transport level.
const maxFetchBytes = 10 << 20

// Content is the parsed page handed to the NLP stages.
type Content struct {
	Title           string
	Text            string
	MetaDescription string
	Length          int
}

// Extractor fetches and parses web pages.
type Extractor struct {
	client   *http.Client
	maxChars int
	minChars int
}

// New creates an Extractor. maxChars caps the returned body text (LLM cost
// control); minChars is the adequacy threshold for a strategy's output.
func New(timeout time.Duration, maxChars, minChars int) *Extractor {
	return &Extractor{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxChars: maxChars,
		minChars: minChars,
	}
}

type strategy struct {
	name string
	run  func(html []byte, pageURL *url.URL) (*Content, error)
}

// Extract fetches rawURL and runs the strategy chain over the response body.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Content, error) {
	html, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	strategies := []strategy{
		{"readability", extractReadability},
		{"goquery", extractGoquery},
	}

	for _, s := range strategies {
		content, err := s.run(html, pageURL)
		if err != nil {
			slog.Warn("extraction strategy failed",
				slog.String("strategy", s.name),
				slog.String("url", rawURL),
				slog.String("error", err.Error()))
			continue
		}
		if len(content.Text) < e.minChars {
			slog.Debug("extraction strategy inadequate",
				slog.String("strategy", s.name),
				slog.Int("chars", len(content.Text)))
			continue
		}

		e.truncate(content)
		content.Length = len(content.Text)
		slog.Info("content extracted",
			slog.String("strategy", s.name),
			slog.String("url", rawURL),
			slog.Int("chars", content.Length))
		return content, nil
	}

	return nil, fmt.Errorf("%w: all extraction strategies yielded under %d chars", ErrNoContent, e.minChars)
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "BlogForge/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}

func (e *Extractor) truncate(c *Content) {
	if len(c.Text) > e.maxChars {
		slog.Debug("truncating content",
			slog.Int("from", len(c.Text)),
			slog.Int("to", e.maxChars))
		c.Text = cutRuneSafe(c.Text, e.maxChars)
	}
}

// cutRuneSafe slices s to at most limit bytes, backing the cut up so it
// never splits a multi-byte rune.
func cutRuneSafe(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// extractReadability runs the article-focused parser. Best for blog posts
// and news pages with a clear main column.
func extractReadability(html []byte, pageURL *url.URL) (*Content, error) {
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability parse: %w", err)
	}

	return &Content{
		Title:           strings.TrimSpace(article.Title),
		Text:            strings.TrimSpace(article.TextContent),
		MetaDescription: strings.TrimSpace(article.Excerpt),
	}, nil
}

// Elements removed before the goquery harvest; they never carry article text.
var noiseSelectors = []string{
	"script", "style", "noscript", "nav", "header", "footer",
	"aside", "form", "iframe", "svg", "canvas",
}

// extractGoquery is the general fallback: strip noise elements, pick the most
// promising container, and join its paragraph-level text.
func extractGoquery(html []byte, _ *url.URL) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	metaDesc, _ := doc.Find("meta[name='description']").Attr("content")

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Container priority: article, main, then body.
	var container *goquery.Selection
	for _, tag := range []string{"article", "main", "body"} {
		if sel := doc.Find(tag); sel.Length() > 0 {
			container = sel.First()
			break
		}
	}
	if container == nil {
		return nil, fmt.Errorf("no content container found")
	}

	var parts []string
	container.Find("p, h1, h2, h3, h4, li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return &Content{
		Title:           title,
		Text:            strings.Join(parts, "\n"),
		MetaDescription: strings.TrimSpace(metaDesc),
	}, nil
}
