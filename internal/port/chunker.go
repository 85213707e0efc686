package port

import "finrag/internal/domain"

type Chunker interface {
	Chunk(filename, text string) []domain.Chunk

	Preprocess(text string) string
}
