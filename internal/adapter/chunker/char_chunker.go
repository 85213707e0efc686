package chunker

import (
	"strings"
	"unicode/utf8"

	"finrag/internal/domain"
)

const (
	DefaultMaxChars     = 4000
	DefaultOverlapChars = 200
)

// CharChunker splits text on word boundaries into chunks of at most maxChars
// characters. Up to overlapChars characters of trailing words are repeated at
// the start of the next chunk.
type CharChunker struct {
	maxChars     int
	overlapChars int
}

func NewCharChunker(maxChars, overlapChars int) *CharChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		overlapChars = 0
	}
	return &CharChunker{
		maxChars:     maxChars,
		overlapChars: overlapChars,
	}
}

// Indexed chunks and queries go through the same function.
func (c *CharChunker) Preprocess(text string) string {
	return Preprocess(text)
}

// Preprocess lowercases text and collapses every whitespace run, newlines
// included, to one space. Chunk text is joined the same way.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func (c *CharChunker) Chunk(filename, text string) []domain.Chunk {
	words := c.words(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current []string
	size := 0

	emit := func() {
		chunks = append(chunks, domain.Chunk{
			Filename: filename,
			Position: len(chunks),
			Text:     strings.Join(current, " "),
		})
	}

	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if len(current) > 0 && size+1+wl > c.maxChars {
			emit()
			current, size = c.overlap(current, wl)
		}
		if len(current) > 0 {
			size++
		}
		current = append(current, w)
		size += wl
	}
	emit()

	return chunks
}

// overlap returns the trailing words of prev that fit in overlapChars and
// still leave room for a following word of length next.
func (c *CharChunker) overlap(prev []string, next int) ([]string, int) {
	if c.overlapChars == 0 {
		return nil, 0
	}

	start := len(prev)
	size := 0
	for i := len(prev) - 1; i >= 0; i-- {
		wl := utf8.RuneCountInString(prev[i])
		grown := wl
		if size > 0 {
			grown += size + 1
		}
		if grown > c.overlapChars || grown+1+next > c.maxChars {
			break
		}
		size = grown
		start = i
	}

	if start == len(prev) {
		return nil, 0
	}
	kept := make([]string, len(prev)-start)
	copy(kept, prev[start:])
	return kept, size
}

// words splits text on whitespace and hard-splits any word longer than maxChars.
func (c *CharChunker) words(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		for utf8.RuneCountInString(f) > c.maxChars {
			runes := []rune(f)
			out = append(out, string(runes[:c.maxChars]))
			f = string(runes[c.maxChars:])
		}
		out = append(out, f)
	}
	return out
}
