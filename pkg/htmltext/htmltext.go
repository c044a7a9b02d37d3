// Package htmltext reduces HTML fragments, such as the markup some publishers
// put in article descriptions, to plain text.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"svg": true, "iframe": true, "head": true,
}

// HasMarkup reports whether s looks like it contains HTML tags or entities.
func HasMarkup(s string) bool {
	if i := strings.IndexByte(s, '<'); i >= 0 && strings.IndexByte(s[i:], '>') > 0 {
		return true
	}
	return strings.Contains(s, "&") && strings.Contains(s, ";")
}

// Plain returns the visible text of an HTML fragment with whitespace collapsed.
// Input without markup is returned with only its whitespace normalized.
func Plain(fragment string) string {
	if !HasMarkup(fragment) {
		return collapse(fragment)
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}

	var sb strings.Builder
	extractTextFromNode(doc, &sb)
	return collapse(sb.String())
}

func extractTextFromNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		if skipTags[n.Data] {
			return
		}
		switch n.Data {
		case "br", "p", "div", "li", "tr":
			sb.WriteString(" ")
		}
	}

	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextFromNode(c, sb)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "li", "h1", "h2", "h3", "h4":
			sb.WriteString(" ")
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
