package cli

import (
	"fmt"
	"time"

	"finrag/config"
	"finrag/internal/adapter/cache"
	"finrag/internal/adapter/chunker"
	"finrag/internal/adapter/embedding"
	"finrag/internal/adapter/extract"
	"finrag/internal/adapter/memstore"
	"finrag/internal/adapter/narration"
	"finrag/internal/adapter/sqlstore"
	"finrag/internal/adapter/store"
	"finrag/internal/port"
	"finrag/internal/usecase"
)

// Store is what the use cases need from a backend.
type Store interface {
	port.DocumentStore
	port.IndexArtifactStore
}

type migrator interface {
	Migrate(cfg *config.Config) error
}

// App wires the configured store, embedder and use cases together.
type App struct {
	Store    Store
	Ingest   *usecase.IngestUseCase
	Index    *usecase.IndexUseCase
	Retrieve *usecase.RetrieveUseCase
}

// OpenStore opens the store selected by cfg under dir and brings its schema
// up to date.
func OpenStore(cfg *config.Config, dir string) (Store, error) {
	var (
		st  Store
		err error
	)
	if cfg.Store.Driver == "memory" {
		return memstore.NewMemoryStore(), nil
	}
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch cfg.Store.Driver {
	case "sqlite":
		st, err = sqlstore.NewStore(cfg.StorePath(dir))
	default:
		st, err = store.NewBoltStore(cfg.StorePath(dir))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	if m, ok := st.(migrator); ok {
		if err := m.Migrate(cfg); err != nil {
			st.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return st, nil
}

// NewApp builds the use cases over st.
func NewApp(cfg *config.Config, st Store) (*App, error) {
	emb, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	chk := chunker.NewCharChunker(cfg.Chunk.MaxChars, cfg.Chunk.OverlapChars)
	index := usecase.NewIndexUseCase(st, chk, emb)

	// A zero cache size turns caching off.
	var queryCache *cache.QueryCache
	if cfg.Retrieve.CacheSize > 0 {
		queryCache = cache.NewQueryCache(cfg.Retrieve.CacheSize, time.Duration(cfg.Retrieve.CacheTTLSeconds)*time.Second)
	}

	return &App{
		Store:    st,
		Index:    index,
		Ingest:   usecase.NewIngestUseCase(st, extract.NewExtractor(cfg.Ingest.MaxFileSize), narration.NewNarrator(), index),
		Retrieve: usecase.NewRetrieveUseCase(index, chk, emb, queryCache, cfg.Retrieve.TopK),
	}, nil
}

// openApp opens the store for the current command invocation.
func openApp() (*App, error) {
	cfg := GetConfig()
	st, err := OpenStore(cfg, GetRootDir())
	if err != nil {
		return nil, err
	}
	app, err := NewApp(cfg, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
