// Package app wires adapters and services into a Runtime, the explicit
// object every driving adapter works through.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/config/file"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/events"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/index/bm25"
	prommetrics "github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/metrics/prometheus"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/bolt"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/memory"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/sqlite"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/services"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
	"github.com/Cyb-Leon/jse-decision-support/internal/postprocessors"
)

// Options adjusts how a Runtime is built. The zero value reads settings
// from the config file in the default home directory.
type Options struct {
	// Home is the data directory. Empty uses $JSE_HOME or ~/.jse.
	Home string

	// Backend overrides the configured storage backend.
	Backend domain.StorageBackend

	// ConfigStore replaces the config file.
	ConfigStore driven.ConfigStore

	// LLM replaces the configured language model.
	LLM driven.LLMService

	// SkipRestore leaves the index empty at start-up.
	SkipRestore bool
}

// Runtime holds every service for one process. It replaces global state:
// driving adapters receive it explicitly or through a context.
type Runtime struct {
	Home     string
	Settings domain.AppSettings

	SettingsService *services.SettingsService
	Documents       *services.DocumentService
	Ingest          *services.IngestService
	Query           *services.QueryService
	Analyst         *services.AnalystService

	Registry *extractors.Registry
	Index    *bm25.Index
	Store    driven.DocumentStore
	Events   *events.Broker[domain.StatusEvent]
	Metrics  *prommetrics.Metrics
	LLM      driven.LLMService

	closers []func() error
}

// New builds a runtime from settings and, for persistent backends, rebuilds
// the index from the stored documents.
func New(ctx context.Context, opts Options) (*Runtime, error) {
	home := opts.Home
	if home == "" {
		dir, err := file.DefaultHome()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		home = dir
	}

	configStore := opts.ConfigStore
	if configStore == nil {
		store, err := file.NewConfigStore(home)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		configStore = store
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.Backend != "" {
		settings.Storage.Backend = opts.Backend
	}
	if err := settingsService.Validate(settings); err != nil {
		return nil, err
	}

	r := &Runtime{
		Home:            home,
		Settings:        *settings,
		SettingsService: settingsService,
		Registry:        extractors.NewDefaultRegistry(),
		Index:           bm25.New(),
		Events:          events.NewBroker[domain.StatusEvent](),
		Metrics:         prommetrics.New(),
	}
	r.closers = append(r.closers, func() error {
		r.Events.Shutdown()
		return nil
	})

	if err := r.wire(ctx, opts); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Runtime) wire(ctx context.Context, opts Options) error {
	store, closeStore, err := openStore(r.Settings.Storage.Backend, r.Home)
	if err != nil {
		return err
	}
	r.Store = store
	if closeStore != nil {
		r.closers = append(r.closers, closeStore)
	}

	pipeline, err := postprocessors.DefaultPipeline(r.Settings.Pipeline)
	if err != nil {
		return err
	}

	r.Ingest = services.NewIngestService(r.Registry, pipeline, store, r.Index,
		services.WithEvents(r.Events),
		services.WithIngestMetrics(r.Metrics),
		services.WithWorkers(r.Settings.Pipeline.Workers),
	)
	r.Query, err = services.NewQueryService(r.Index, store, r.Settings.Query,
		services.WithQueryMetrics(r.Metrics))
	if err != nil {
		return err
	}
	r.Documents = services.NewDocumentService(store, r.Ingest)

	r.LLM = opts.LLM
	if r.LLM == nil {
		r.LLM = newLLM(r.Settings.LLM)
	}
	if r.LLM != nil {
		r.closers = append(r.closers, r.LLM.Close)
	}

	prompts, err := file.NewPromptStore(filepath.Join(r.Home, "prompts"))
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}
	r.Analyst = services.NewAnalystService(r.Query, store, r.LLM, prompts, r.Settings.LLM)

	if r.Settings.Storage.Backend.IsPersistent() && !opts.SkipRestore {
		n, err := r.Ingest.Restore(ctx)
		if err != nil {
			return fmt.Errorf("restore index: %w", err)
		}
		logger.Debug("Restored %d documents from %s storage", n, r.Settings.Storage.Backend)
	}

	return nil
}

// openStore opens the document store for a backend.
func openStore(backend domain.StorageBackend, home string) (driven.DocumentStore, func() error, error) {
	switch backend {
	case domain.StorageMemory:
		return memory.NewDocumentStore(), nil, nil
	case domain.StorageSQLite:
		s, err := sqlite.NewStore(home)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s.DocumentStore(), s.Close, nil
	case domain.StorageBolt:
		s, err := bolt.NewStore(home)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidSettings, backend)
	}
}

// Close releases every resource in reverse order of acquisition.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

type runtimeKey struct{}

// WithRuntime returns a context carrying r.
func WithRuntime(ctx context.Context, r *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, r)
}

// FromContext returns the runtime carried by ctx.
func FromContext(ctx context.Context) (*Runtime, bool) {
	r, ok := ctx.Value(runtimeKey{}).(*Runtime)
	return r, ok && r != nil
}
