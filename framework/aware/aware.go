// Package aware declares the standard setter capabilities. An object built by
// the injectable factory that implements one of these interfaces receives the
// matching bootstrap service after construction.
//
//	type ImportRunner struct{ log *zap.Logger }
//
//	func (r *ImportRunner) SetLog(l *zap.Logger) { r.log = l }
package aware

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/cache"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/filesystem"
)

// Service names of the bootstrap services.
const (
	Config      = "config"
	Log         = "log"
	FileManager = "fileManager"
	DataCache   = "dataCache"
	Container   = "container"
)

type LoggerAware interface{ SetLog(*zap.Logger) }

type ConfigAware interface{ SetConfig(*config.Config) }

type FileManagerAware interface {
	SetFileManager(*filesystem.Manager)
}

type DataCacheAware interface{ SetDataCache(*cache.DataCache) }

type ContainerAware interface {
	SetContainer(*container.Container)
}

// Defaults returns the capabilities for every bootstrap service.
func Defaults() []container.Capability {
	return []container.Capability{
		container.Aware(Config, ConfigAware.SetConfig),
		container.Aware(Log, LoggerAware.SetLog),
		container.Aware(FileManager, FileManagerAware.SetFileManager),
		container.Aware(DataCache, DataCacheAware.SetDataCache),
		container.Aware(Container, ContainerAware.SetContainer),
	}
}
