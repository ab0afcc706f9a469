package site

import (
	"bytes"
	"html/template"
	"log"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/aethra/haven/internal/models"
)

// BlogBody is a post body ready for the template
type BlogBody struct {
	Structured  bool
	Description string
	Highlights  []string
	Tip         string
	HTML        template.HTML
}

func newMarkdown() goldmark.Markdown {
	// raw HTML in a post is omitted, not passed through
	return goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))
}

// RenderBlog converts a content column into a body. Structured documents
// keep their parts; markdown becomes sanitized HTML.
func RenderBlog(md goldmark.Markdown, content string) BlogBody {
	doc := models.ParseBlogContent(content)
	if doc.Structured {
		return BlogBody{
			Structured:  true,
			Description: doc.Description,
			Highlights:  doc.Highlights,
			Tip:         doc.Tip,
		}
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(doc.Body), &buf); err != nil {
		log.Printf("site: markdown conversion failed: %v", err)
		return BlogBody{HTML: template.HTML(template.HTMLEscapeString(doc.Body))}
	}
	return BlogBody{HTML: template.HTML(buf.String())}
}
