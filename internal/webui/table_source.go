package webui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"sapdash/internal/dashboard"
)

// PageFunc renders the page as it currently stands.
type PageFunc func(ctx context.Context) ([]byte, error)

// HTMLTableSource reads tables out of a rendered page.
type HTMLTableSource struct {
	page PageFunc
}

// NewHTMLTableSource creates a source over page.
func NewHTMLTableSource(page PageFunc) *HTMLTableSource {
	return &HTMLTableSource{page: page}
}

// Table renders the page and returns the first table carrying class.
func (s *HTMLTableSource) Table(ctx context.Context, class string) (dashboard.Table, error) {
	body, err := s.page(ctx)
	if err != nil {
		return dashboard.Table{}, fmt.Errorf("render page: %w", err)
	}
	return ParseTable(bytes.NewReader(body), class)
}

// ParseTable returns the text of every th/td, row by row, of the first table
// whose class list contains class. Rows of nested tables are not included.
func ParseTable(r io.Reader, class string) (dashboard.Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return dashboard.Table{}, fmt.Errorf("parse page: %w", err)
	}
	node := findByClass(doc, "table", class)
	if node == nil {
		return dashboard.Table{}, dashboard.ErrTableNotFound
	}

	table := dashboard.Table{Rows: [][]string{}}
	collectRows(node, &table)
	return table, nil
}

func collectRows(n *html.Node, table *dashboard.Table) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			table.Rows = append(table.Rows, rowCells(c))
		case "thead", "tbody", "tfoot":
			collectRows(c, table)
		}
	}
}

func rowCells(tr *html.Node) []string {
	cells := []string{}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

func findByClass(n *html.Node, tag, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// textContent approximates rendered text: whitespace runs collapse to one
// space, <br> becomes a newline, script and style are skipped.
func textContent(n *html.Node) string {
	var b strings.Builder
	writeText(n, &b)
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func writeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "template":
			return
		case "br":
			b.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b)
	}
}
