// Package render assembles a generated blog into Markdown and an HTML
// preview for UI consumption.
package render

import (
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/blogforge/backend/generator"
)

// Markdown renders the blog as a Markdown document: title, meta comment,
// introduction, sections, conclusion, CTA and tags.
func Markdown(blog *generator.Blog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", blog.Title)
	if blog.MetaDescription != "" {
		fmt.Fprintf(&b, "<!-- meta: %s -->\n\n", blog.MetaDescription)
	}
	fmt.Fprintf(&b, "%s\n\n", blog.Introduction)

	for _, s := range blog.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Heading, s.Content)
	}

	if blog.Conclusion != "" {
		fmt.Fprintf(&b, "## Conclusion\n\n%s\n\n", blog.Conclusion)
	}
	if blog.CTA != "" {
		fmt.Fprintf(&b, "**%s**\n\n", blog.CTA)
	}
	if len(blog.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(blog.Tags, ", "))
	}

	return b.String()
}

// HTML renders the Markdown document to an HTML preview.
func HTML(blog *generator.Blog) string {
	return string(blackfriday.Run([]byte(Markdown(blog))))
}

// Renderer adapts the package functions to the pipeline's renderer
// interface.
type Renderer struct{}

func (Renderer) Markdown(blog *generator.Blog) string { return Markdown(blog) }
func (Renderer) HTML(blog *generator.Blog) string     { return HTML(blog) }
