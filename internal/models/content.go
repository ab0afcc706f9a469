package models

import (
	"encoding/json"
	"strings"
)

// BlogContent is the body of a blog post. Posts written in the structured
// editor store a JSON document in the content column; everything else is
// markdown kept in Body.
type BlogContent struct {
	Structured  bool       `json:"-"`
	Description string     `json:"description"`
	Highlights  StringList `json:"highlights"`
	Tip         string     `json:"tip"`
	Body        string     `json:"-"`
}

// ParseBlogContent decodes a content column. Anything that is not a JSON
// object with at least one known key is treated as markdown.
func ParseBlogContent(raw string) BlogContent {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return BlogContent{Body: raw}
	}

	var doc BlogContent
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return BlogContent{Body: raw}
	}
	if doc.Description == "" && doc.Tip == "" && len(doc.Highlights) == 0 {
		return BlogContent{Body: raw}
	}
	doc.Structured = true
	return doc
}

// Encode renders the content back into its column form
func (c BlogContent) Encode() string {
	if !c.Structured {
		return c.Body
	}
	if c.Highlights == nil {
		c.Highlights = StringList{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return c.Description
	}
	return string(data)
}

// Summary returns a short plain-text lead, used when a post has no excerpt
func (c BlogContent) Summary(max int) string {
	text := c.Description
	if !c.Structured {
		text = c.Body
	}
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || len([]rune(text)) <= max {
		return text
	}
	runes := []rune(text)[:max]
	if i := strings.LastIndex(string(runes), " "); i > max/2 {
		return string(runes)[:i] + "…"
	}
	return string(runes) + "…"
}
