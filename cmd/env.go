package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/recon"
	"github.com/sells-group/recon-cli/internal/store"
	"github.com/sells-group/recon-cli/pkg/extraction"
	"github.com/sells-group/recon-cli/pkg/posearch"
)

// reconEnv bundles the wired pipeline dependencies for a command.
type reconEnv struct {
	Store    store.Store
	Registry *model.PORegistry
	Index    *posearch.Index
	Machine  *recon.Machine
}

// initStore opens and migrates the result log.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initRegistry loads the PO reference data. A missing file aborts the
// command before any invoice is touched.
func initRegistry() (*model.PORegistry, error) {
	registry, err := model.LoadPORegistry(cfg.PO.Path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("po registry loaded",
		zap.String("path", cfg.PO.Path),
		zap.Int("orders", registry.Len()),
	)
	return registry, nil
}

// initIndex builds the similarity index over the registry.
func initIndex(ctx context.Context, registry *model.PORegistry) (*posearch.Index, error) {
	var embedder posearch.Embedder
	switch cfg.Search.Provider {
	case "ollama":
		embedder = posearch.NewOllamaEmbedder(
			posearch.WithOllamaBaseURL(cfg.Search.OllamaBaseURL),
			posearch.WithOllamaModel(cfg.Search.OllamaModel),
		)
	default:
		embedder = posearch.NewHashEmbedder(0)
	}

	index := posearch.NewIndex(embedder)
	for _, po := range registry.All() {
		if err := index.Add(ctx, po.Number, po.SearchText()); err != nil {
			return nil, eris.Wrapf(err, "index PO %s", po.Number)
		}
	}
	zap.L().Info("po similarity index built",
		zap.String("provider", cfg.Search.Provider),
		zap.Int("documents", index.Len()),
	)
	return index, nil
}

// initEnv wires store, registry, index, extraction client, and machine.
func initEnv(ctx context.Context) (*reconEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := initRegistry()
	if err != nil {
		st.Close()
		return nil, err
	}

	index, err := initIndex(ctx, registry)
	if err != nil {
		st.Close()
		return nil, err
	}

	extractor := extraction.NewAnthropicClient(cfg.Anthropic.Key,
		extraction.WithModel(cfg.Anthropic.Model),
		extraction.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)),
		extraction.WithRequestsPerMinute(cfg.Extraction.RequestsPerMinute),
	)

	return &reconEnv{
		Store:    st,
		Registry: registry,
		Index:    index,
		Machine:  recon.NewMachine(cfg, extractor, index, registry),
	}, nil
}

// Close releases the environment's resources.
func (e *reconEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// resolveQuality maps the --quality flag to a document quality.
// "auto" classifies by the configured filename hints.
func resolveQuality(flag, path string) model.DocQuality {
	switch flag {
	case "clean":
		return model.DocQualityClean
	case "degraded":
		return model.DocQualityDegraded
	default:
		return model.ClassifyQuality(path, cfg.Extraction.DegradedHints)
	}
}
