package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup turns an HTML fragment into plain text. Text nodes are joined with a
// single space so adjacent block elements do not run together, entities are decoded
// and script/style content is dropped.
func StripMarkup(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return CollapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseWhitespace(s)
	}

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return CollapseWhitespace(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Iframe:
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// CollapseWhitespace replaces every run of whitespace with one space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes caps s at max characters without splitting a multi-byte rune.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

// CleanToValidUTF8 drops invalid byte sequences and NUL bytes, which Postgres rejects in text columns.
func CleanToValidUTF8(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

// SafeText normalizes feed-provided markup into storable plain text.
func SafeText(s string) string {
	return StripMarkup(CleanToValidUTF8(s))
}
