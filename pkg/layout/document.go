// CLAUDE:SUMMARY Extracted report text: pages of lines, split into table cells by ruling or column spacing.
package layout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// Page is the text of one report page.
type Page struct {
	Lines []string
}

// Document is a report as extracted text, one entry per page.
type Document struct {
	Pages []Page
}

// ParseText reads pdftotext-style output: pages separated by form feeds,
// table rows either ruled with '|' or laid out in spaced columns.
func ParseText(r io.Reader) (*Document, error) {
	doc := &Document{}
	cur := Page{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		for {
			i := strings.IndexByte(line, '\f')
			if i < 0 {
				break
			}
			cur.Lines = append(cur.Lines, line[:i])
			doc.Pages = append(doc.Pages, cur)
			cur = Page{}
			line = line[i+1:]
		}
		cur.Lines = append(cur.Lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	doc.Pages = append(doc.Pages, cur)

	// Drop blank lines and the empty page pdftotext leaves after the last
	// form feed.
	pages := doc.Pages[:0]
	for _, p := range doc.Pages {
		var lines []string
		for _, l := range p.Lines {
			if strings.TrimSpace(l) != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, Page{Lines: lines})
		}
	}
	doc.Pages = pages
	return doc, nil
}

// ReadFile loads a report. Text files are parsed directly; PDF files are first
// run through pdftotext -layout, which must be on PATH.
func ReadFile(ctx context.Context, path string) (*Document, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext %s: %w", path, err)
		}
		return ParseText(strings.NewReader(string(out)))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseText(f)
}

// Title returns the first line of the page.
func (p Page) Title() string {
	if len(p.Lines) == 0 {
		return ""
	}
	return strings.TrimSpace(p.Lines[0])
}

// Table returns the cells of the ruled ('|') rows of the page.
func (p Page) Table() [][]string {
	var rows [][]string
	for _, l := range p.Lines {
		if strings.Contains(l, "|") {
			rows = append(rows, splitCells(l))
		}
	}
	return rows
}

// Rows returns the cells of every line of the page.
func (p Page) Rows() [][]string {
	rows := make([][]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		rows = append(rows, splitCells(l))
	}
	return rows
}

var columnGap = regexp.MustCompile(`\s{2,}`)

// splitCells splits a table line into trimmed cells. Ruled rows keep interior
// empty cells; other layouts drop them. When cell text uses non-breaking
// spaces, a single ordinary space separates cells.
func splitCells(line string) []string {
	switch {
	case strings.Contains(line, "|"):
		parts := strings.Split(line, "|")
		if strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}
		if n := len(parts); n > 0 && strings.TrimSpace(parts[n-1]) == "" {
			parts = parts[:n-1]
		}
		for i := range parts {
			parts[i] = collapse(parts[i])
		}
		return parts
	case strings.Contains(line, "\t"):
		return nonEmpty(strings.Split(line, "\t"))
	case strings.Contains(line, "\u00a0"):
		return nonEmpty(strings.Split(line, " "))
	default:
		return nonEmpty(columnGap.Split(line, -1))
	}
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = collapse(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// collapse replaces non-breaking spaces and squeezes whitespace runs.
func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
