//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"time"

	"finrag/internal/adapter/cache"
	"finrag/internal/adapter/chunker"
	"finrag/internal/adapter/embedding"
	"finrag/internal/adapter/extract"
	"finrag/internal/adapter/memstore"
	"finrag/internal/adapter/narration"
	"finrag/internal/domain"
	"finrag/internal/usecase"
)

var (
	store    *memstore.MemoryStore
	ingest   *usecase.IngestUseCase
	index    *usecase.IndexUseCase
	retrieve *usecase.RetrieveUseCase
)

func init() {
	reset()
}

// reset builds a fresh in-memory pipeline using the hash embedder, so the
// browser build needs no network access.
func reset() {
	store = memstore.NewMemoryStore()
	emb := embedding.NewHashEmbedder(embedding.DefaultHashDimension)
	chk := chunker.NewCharChunker(chunker.DefaultMaxChars, chunker.DefaultOverlapChars)
	index = usecase.NewIndexUseCase(store, chk, emb)
	ingest = usecase.NewIngestUseCase(store, extract.NewExtractor(0), narration.NewNarrator(), index)
	retrieve = usecase.NewRetrieveUseCase(index, chk, emb, cache.NewQueryCache(64, 5*time.Minute), 1)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("finragIngest", js.FuncOf(ingestContent))
	js.Global().Set("finragRetrieve", js.FuncOf(retrieveContent))
	js.Global().Set("finragClear", js.FuncOf(clearStore))
	js.Global().Set("finragStats", js.FuncOf(getStats))

	<-c
}

// ingestContent accepts the file body as a string or a Uint8Array.
func ingestContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: finragIngest(filename, content, [contentType])")
	}

	filename := args[0].String()
	var content []byte
	if args[1].Type() == js.TypeString {
		content = []byte(args[1].String())
	} else {
		content = make([]byte, args[1].Get("length").Int())
		js.CopyBytesToGo(content, args[1])
	}
	declared := ""
	if len(args) > 2 {
		declared = args[2].String()
	}

	records, err := ingest.Ingest(domain.RawDocument{
		Filename:    filename,
		ContentType: extract.DetectContentType(filename, declared, content),
		Content:     content,
		IngestedAt:  time.Now(),
	})
	if err != nil {
		return makeError("ingest failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"success":  true,
		"records":  records,
		"filename": filename,
	})
}

func retrieveContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: finragRetrieve(query, [topK])")
	}

	query := args[0].String()
	topK := 0
	if len(args) > 1 {
		topK = args[1].Int()
	}

	ctx := context.Background()
	res, err := retrieve.RetrieveClosestDocument(ctx, query, topK)
	if err != nil {
		return makeError(res.Message)
	}
	hits, _ := retrieve.Search(ctx, query, topK)

	output := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		output = append(output, map[string]interface{}{
			"filename": h.Filename,
			"position": h.Position,
			"score":    h.Score,
		})
	}

	return makeResult(map[string]interface{}{
		"filename": res.Filename,
		"found":    res.Found,
		"message":  res.Message,
		"hits":     output,
		"query":    query,
	})
}

func clearStore(this js.Value, args []js.Value) interface{} {
	reset()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	stats, _ := index.Stats()
	files, _ := store.ListFilenames()

	return makeResult(map[string]interface{}{
		"documents":    stats.Documents,
		"chunks":       stats.Chunks,
		"indexVersion": stats.IndexVersion,
		"files":        files,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
