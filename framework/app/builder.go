package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/aware"
	"github.com/km-arc/go-container/framework/binding"
	"github.com/km-arc/go-container/framework/cache"
	"github.com/km-arc/go-container/framework/class"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/filesystem"
	applog "github.com/km-arc/go-container/framework/log"
	"github.com/km-arc/go-container/framework/metadata"
)

// Service names seeded by Build.
const (
	ConfigService      = aware.Config
	LogService         = aware.Log
	FileManagerService = aware.FileManager
	DataCacheService   = aware.DataCache
	MetadataService    = "metadata"
)

// Builder assembles a container. Build is the only place that knows the
// bootstrap order: config, log, file manager, data cache, service metadata,
// bindings, then the container itself.
//
//	b := app.NewBuilder(classes).
//	    WithEnvFiles(".env").
//	    Loader("router", routerLoader)
//	c, err := b.Build()
type Builder struct {
	classes  *class.Registry
	envFiles []string

	// caller-supplied bootstrap services; built from config when nil
	config    *config.Config
	logger    *zap.Logger
	files     *filesystem.Manager
	dataCache *cache.DataCache

	services      container.Definitions
	modules       []binding.Module
	loaders       map[string]container.Loader
	loaderClasses map[string]string
	instances     map[string]any
	aware         []container.Capability
	registerer    prometheus.Registerer
}

// NewBuilder starts a builder over classes. A nil registry starts empty.
func NewBuilder(classes *class.Registry) *Builder {
	if classes == nil {
		classes = class.NewRegistry()
	}
	return &Builder{
		classes:       classes,
		services:      container.Definitions{},
		loaders:       make(map[string]container.Loader),
		loaderClasses: make(map[string]string),
		instances:     make(map[string]any),
	}
}

// Classes returns the registry the container will build from. Providers add
// their classes here during Register.
func (b *Builder) Classes() *class.Registry { return b.classes }

// ── Bootstrap services ────────────────────────────────────────────────────────

// WithEnvFiles sets the .env files read when no config is supplied.
func (b *Builder) WithEnvFiles(files ...string) *Builder {
	b.envFiles = files
	return b
}

func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.config = cfg
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithFileManager(files *filesystem.Manager) *Builder {
	b.files = files
	return b
}

func (b *Builder) WithDataCache(dc *cache.DataCache) *Builder {
	b.dataCache = dc
	return b
}

// WithMetrics registers container metrics on reg.
func (b *Builder) WithMetrics(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

// ── Declarations ──────────────────────────────────────────────────────────────

// Service declares a service in code. It replaces a declaration of the same
// name from the services file.
func (b *Builder) Service(name string, def container.Definition) *Builder {
	b.services[name] = def
	return b
}

// Loader registers a loader override.
func (b *Builder) Loader(name string, l container.Loader) *Builder {
	b.loaders[name] = l
	return b
}

// LoaderClass registers a loader class for name.
func (b *Builder) LoaderClass(name, className string) *Builder {
	b.loaderClasses[name] = className
	return b
}

// Instance seeds an already-built service.
func (b *Builder) Instance(name string, v any) *Builder {
	b.instances[name] = v
	return b
}

// Bindings adds binding modules. They apply after the bindings file, in
// order.
func (b *Builder) Bindings(modules ...binding.Module) *Builder {
	b.modules = append(b.modules, modules...)
	return b
}

// Aware adds setter capabilities on top of the standard ones.
func (b *Builder) Aware(caps ...container.Capability) *Builder {
	b.aware = append(b.aware, caps...)
	return b
}

// ── Build ─────────────────────────────────────────────────────────────────────

// Build produces the bootstrap services, reusing those supplied by the
// caller, then the binding registry, then the container seeded with both.
func (b *Builder) Build() (*container.Container, error) {
	cfg := b.config
	if cfg == nil {
		cfg = config.Load(b.envFiles...)
	}

	logger := b.logger
	if logger == nil {
		var err error
		if logger, err = applog.New(cfg.Log, cfg.App.Env); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	files := b.files
	if files == nil {
		files = filesystem.NewManager(cfg.Storage.DataDir, logger)
	}

	dataCache := b.dataCache
	if dataCache == nil {
		dataCache = cache.New(files, logger)
	}

	meta := &metadata.Metadata{}
	if path := cfg.Container.ServicesFile; path != "" {
		var err error
		if meta, err = metadata.Load(dirFS(path)); err != nil {
			return nil, fmt.Errorf("app: loading services: %w", err)
		}
	}
	meta.Merge(&metadata.Metadata{Services: b.codeServices()})
	if missing := meta.Unregistered(b.classes); len(missing) > 0 {
		logger.Warn("services declare unregistered classes", zap.Strings("services", missing))
	}

	var modules []binding.Module
	if path := cfg.Container.BindingsFile; path != "" {
		modules = append(modules, binding.FileModule(dirFS(path)))
	}
	bindings, err := binding.Load(append(modules, b.modules...)...)
	if err != nil {
		return nil, fmt.Errorf("app: loading bindings: %w", err)
	}

	opts := []container.Option{
		container.WithConfiguration(meta.Definitions()),
		container.WithBindings(bindings),
		container.WithLogger(logger),
		container.WithAware(append(aware.Defaults(), b.aware...)...),
		container.WithAwareSkip(cfg.Container.AwareSkip...),
		container.WithInstance(ConfigService, cfg),
		container.WithInstance(LogService, logger),
		container.WithInstance(FileManagerService, files),
		container.WithInstance(DataCacheService, dataCache),
		container.WithInstance(MetadataService, meta),
	}
	if cfg.Container.StrictAutowire {
		opts = append(opts, container.WithStrictAutowire())
	}
	if b.registerer != nil {
		opts = append(opts, container.WithMetrics(b.registerer))
	}
	for name, v := range b.instances {
		opts = append(opts, container.WithInstance(name, v))
	}
	for name, l := range b.loaders {
		opts = append(opts, container.WithLoader(name, l))
	}
	for name, cn := range b.loaderClasses {
		opts = append(opts, container.WithLoaderClass(name, cn))
	}

	c, err := container.New(b.classes, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	logger.Info("container built",
		zap.String("container", c.ID()),
		zap.Int("services", len(meta.Services)),
		zap.Int("bindings", bindings.Len()),
	)
	return c, nil
}

func (b *Builder) codeServices() map[string]metadata.Service {
	out := make(map[string]metadata.Service, len(b.services))
	for name, def := range b.services {
		out[name] = metadata.Service{
			ClassName:       def.ClassName,
			LoaderClassName: def.LoaderClassName,
			DependencyList:  def.Dependencies,
			Settable:        def.Settable,
		}
	}
	return out
}

// dirFS splits a file path into a filesystem rooted at its directory and the
// base name, so absolute and relative paths both work with fs.FS.
func dirFS(path string) (fs.FS, string) {
	return os.DirFS(filepath.Dir(path)), filepath.Base(path)
}
