package extract

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

// glyph is one positioned text run on a page. PDF y coordinates grow upwards.
type glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

type cell struct {
	x0, x1 float64
	text   string
}

// pdfTables reads every page and returns the tables found on each, in page order.
func pdfTables(content []byte) (tables []Table, err error) {
	// The pdf package reports malformed content streams by panicking.
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts := page.Content().Text
		glyphs := make([]glyph, 0, len(texts))
		for _, t := range texts {
			glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		tables = append(tables, layoutTables(glyphs)...)
	}
	return tables, nil
}

// layoutTables groups glyphs into lines by baseline and lines into cells by
// horizontal gaps. A table is a maximal run of lines with at least two cells;
// its first line is the header and later cells are assigned to the header
// column they overlap most.
func layoutTables(glyphs []glyph) []Table {
	var tables []Table
	var current [][]cell

	flush := func() {
		if len(current) > 1 {
			tables = append(tables, alignTable(current))
		}
		current = nil
	}

	for _, line := range groupLines(glyphs) {
		cells := splitCells(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		current = append(current, cells)
	}
	flush()
	return tables
}

func groupLines(glyphs []glyph) [][]glyph {
	sorted := make([]glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]glyph
	for _, g := range sorted {
		n := len(lines)
		if n > 0 {
			base := lines[n-1][0]
			if math.Abs(base.Y-g.Y) <= lineTolerance(base.FontSize) {
				lines[n-1] = append(lines[n-1], g)
				continue
			}
		}
		lines = append(lines, []glyph{g})
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

func splitCells(line []glyph) []cell {
	var cells []cell
	var b strings.Builder
	var cur cell
	prevEnd := math.Inf(-1)

	for _, g := range line {
		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		gap := g.X - prevEnd
		if b.Len() > 0 && gap > size {
			cur.text = strings.TrimSpace(b.String())
			if cur.text != "" {
				cells = append(cells, cur)
			}
			b.Reset()
		}
		if b.Len() == 0 {
			cur = cell{x0: g.X}
		} else if gap > 0.2*size && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		cur.x1 = g.X + g.W
		prevEnd = g.X + g.W
	}
	if b.Len() > 0 {
		cur.text = strings.TrimSpace(b.String())
		if cur.text != "" {
			cells = append(cells, cur)
		}
	}
	return cells
}

func alignTable(lines [][]cell) Table {
	header := lines[0]
	t := Table{Headers: make([]string, len(header))}
	for i, c := range header {
		t.Headers[i] = c.text
	}

	for _, line := range lines[1:] {
		row := make([]string, len(header))
		for _, c := range line {
			col := nearestColumn(header, c)
			if row[col] != "" {
				row[col] += " " + c.text
			} else {
				row[col] = c.text
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func nearestColumn(header []cell, c cell) int {
	best, bestOverlap := -1, 0.0
	for i, h := range header {
		overlap := math.Min(h.x1, c.x1) - math.Max(h.x0, c.x0)
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best >= 0 {
		return best
	}

	center := (c.x0 + c.x1) / 2
	best, bestDist := 0, math.Inf(1)
	for i, h := range header {
		d := math.Abs(center - (h.x0+h.x1)/2)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func lineTolerance(fontSize float64) float64 {
	return math.Max(2, 0.3*fontSize)
}
