package models

import "testing"

func TestParseBlogContent(t *testing.T) {
	t.Run("structured document", func(t *testing.T) {
		c := ParseBlogContent(`{"description":"Sunset walks","highlights":["Beach","Lighthouse"],"tip":"Bring water"}`)
		if !c.Structured {
			t.Fatal("Expected structured content")
		}
		if c.Description != "Sunset walks" || len(c.Highlights) != 2 || c.Tip != "Bring water" {
			t.Errorf("Unexpected content: %+v", c)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		c := ParseBlogContent("# Welcome\n\nOur spa reopens in May.")
		if c.Structured {
			t.Error("Expected plain content")
		}
		if c.Body != "# Welcome\n\nOur spa reopens in May." {
			t.Errorf("Expected body unchanged, got %q", c.Body)
		}
	})

	t.Run("json without known keys", func(t *testing.T) {
		c := ParseBlogContent(`{"foo":"bar"}`)
		if c.Structured {
			t.Error("Expected unknown JSON to be treated as text")
		}
	})

	t.Run("broken json", func(t *testing.T) {
		c := ParseBlogContent(`{"description": `)
		if c.Structured || c.Body != `{"description": ` {
			t.Errorf("Expected raw body, got %+v", c)
		}
	})
}

func TestBlogContentEncode(t *testing.T) {
	c := BlogContent{Structured: true, Description: "Lead"}
	again := ParseBlogContent(c.Encode())
	if !again.Structured || again.Description != "Lead" || again.Highlights == nil {
		t.Errorf("Expected encoded content to parse back, got %+v", again)
	}

	plain := BlogContent{Body: "just text"}
	if plain.Encode() != "just text" {
		t.Errorf("Expected body, got %q", plain.Encode())
	}
}

func TestBlogContentSummary(t *testing.T) {
	c := BlogContent{Body: "The   quiet  season is the best time to visit the island"}
	if got := c.Summary(0); got != "The quiet season is the best time to visit the island" {
		t.Errorf("Expected collapsed whitespace, got %q", got)
	}
	if got := c.Summary(20); got != "The quiet season is…" {
		t.Errorf("Expected word-boundary cut, got %q", got)
	}
}
