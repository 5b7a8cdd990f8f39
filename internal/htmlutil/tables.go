// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package htmlutil extracts tables and text from scraped HTML pages.
package htmlutil

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Table is the cell matrix of one HTML table, rows of trimmed cell
// text in document order.
type Table [][]string

// Header returns the first row, or nil for an empty table.
func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeader lowercases a header cell and collapses internal
// whitespace, so tables can be matched regardless of markup quirks.
func NormalizeHeader(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// ParseTables extracts every table in the document, including nested
// ones, in document order. Rows without cells are dropped.
func ParseTables(r io.Reader) ([]Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var tables []Table
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if t := parseTable(n); len(t) > 0 {
				tables = append(tables, t)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return tables, nil
}

// FindTable returns the first table whose normalized header row
// contains every required header, or nil.
func FindTable(tables []Table, required ...string) Table {
	for _, t := range tables {
		header := make(map[string]bool, len(t.Header()))
		for _, cell := range t.Header() {
			header[NormalizeHeader(cell)] = true
		}
		found := true
		for _, want := range required {
			if !header[NormalizeHeader(want)] {
				found = false
				break
			}
		}
		if found {
			return t
		}
	}
	return nil
}

// RowMap zips a table row against its normalized header. Short rows
// yield empty strings for the missing columns.
func RowMap(header, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, cell := range header {
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		m[NormalizeHeader(cell)] = value
	}
	return m
}

// TextLines strips all markup and returns the document's trimmed text
// lines. Script and style content is excluded.
func TextLines(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && blockElement(n.Data) {
			sb.WriteString("\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && blockElement(n.Data) {
			sb.WriteString("\n")
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines, nil
}

func blockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "tr", "li", "h1", "h2", "h3", "h4", "table":
		return true
	}
	return false
}

// parseTable collects the rows of one table element. Cells belonging
// to a nested table are left to that table's own entry.
func parseTable(table *html.Node) Table {
	var t Table
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table":
				if n != table {
					return
				}
			case "tr":
				if row := parseRow(n); len(row) > 0 {
					t = append(t, row)
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walkRows(child)
		}
	}
	walkRows(table)
	return t
}

func parseRow(tr *html.Node) []string {
	var row []string
	var walkCells func(*html.Node)
	walkCells = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			row = append(row, strings.TrimSpace(nodeText(n)))
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walkCells(child)
		}
	}
	walkCells(tr)
	return row
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return whitespaceRun.ReplaceAllString(sb.String(), " ")
}
