package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Boswecw/cortex-local/internal/command"
	"github.com/Boswecw/cortex-local/internal/config"
	"github.com/Boswecw/cortex-local/internal/embed"
	"github.com/Boswecw/cortex-local/internal/export"
	"github.com/Boswecw/cortex-local/internal/pipeline"
	"github.com/Boswecw/cortex-local/internal/query"
	"github.com/Boswecw/cortex-local/internal/scanner"
	"github.com/Boswecw/cortex-local/internal/storage"
)

// app bundles every long-lived handle a CLI command needs, closed together
// via Close.
type app struct {
	cfg     *config.Config
	store   *storage.Store
	embedder embed.Provider
	surface *command.Surface
}

// newApp loads configuration from the working directory and wires the full
// store/scanner/embedder/pipeline/query/export stack behind a command
// Surface.
func newApp() (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(wd)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DBPath, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sc, err := scanner.New(cfg.Scanner.MaxFileSize, cfg.Scanner.SupportedExtensions, cfg.Scanner.FollowSymlinks, nil)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build scanner: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build embedding provider: %w", err)
	}

	p := pipeline.New(store, sc)
	q := query.New(store, embedder)
	e := export.New(store)
	surface := command.New(p, q, e, cfg.Embedding.Model)

	return &app{cfg: cfg, store: store, embedder: embedder, surface: surface}, nil
}

// newEmbedder builds the configured embedding provider. "mock" is accepted
// for environments without the ONNX model cache populated; anything else
// resolves to the on-disk ONNX model under ${HOME}/.cortex/models/<name>.
func newEmbedder(cfg *config.Config) (embed.Provider, error) {
	if cfg.Embedding.Provider == "mock" {
		return embed.NewMockProvider(), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	modelDir := filepath.Join(home, ".cortex", "models", cfg.Embedding.Model)
	return embed.NewOnnxProvider(modelDir)
}

func (a *app) Close() {
	if a.embedder != nil {
		a.embedder.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
