package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"sort"

	"finrag/internal/adapter/analyzer"
)

const DefaultHashDimension = 1024

// HashEmbedder maps text to a fixed-size vector by feature hashing its word
// unigrams and bigrams. It needs no network and is fully deterministic, which
// makes it the offline default and the stand-in for remote providers in tests.
type HashEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(analyzer.NarrationStopwords...),
	}
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *HashEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	tokens := e.tokenizer.Tokenize(text)

	counts := make(map[string]int, len(tokens)*2)
	for _, tok := range tokens {
		counts[tok]++
	}
	for _, bg := range analyzer.Bigrams(tokens) {
		counts[bg]++
	}

	features := make([]string, 0, len(counts))
	for f := range counts {
		features = append(features, f)
	}
	sort.Strings(features)

	vec := make([]float32, e.dimension)
	for _, feature := range features {
		tf := counts[feature]
		h := fnv.New64a()
		h.Write([]byte(feature))
		sum := h.Sum64()

		slot := int(sum % uint64(e.dimension))
		weight := float32(1 + math.Log(float64(tf)))
		if sum>>63 == 1 {
			weight = -weight
		}
		vec[slot] += weight
	}
	return vec
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) ModelName() string {
	return "hash"
}
