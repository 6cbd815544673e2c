package aware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/aware"
	"github.com/km-arc/go-container/framework/cache"
	"github.com/km-arc/go-container/framework/class"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/filesystem"
)

type runner struct {
	cfg   *config.Config
	log   *zap.Logger
	files *filesystem.Manager
	data  *cache.DataCache
	c     *container.Container
}

func (r *runner) SetConfig(c *config.Config)           { r.cfg = c }
func (r *runner) SetLog(l *zap.Logger)                 { r.log = l }
func (r *runner) SetFileManager(m *filesystem.Manager) { r.files = m }
func (r *runner) SetDataCache(d *cache.DataCache)      { r.data = d }
func (r *runner) SetContainer(c *container.Container)  { r.c = c }

func TestDefaults_InjectEveryBootstrapService(t *testing.T) {
	cfg := &config.Config{}
	logger := zap.NewNop()
	files := filesystem.NewManager(t.TempDir(), nil)
	data := cache.New(files, nil)

	c, err := container.New(
		class.NewRegistry(class.MustNew("Runner", func() *runner { return &runner{} })),
		container.WithAware(aware.Defaults()...),
		container.WithInstance(aware.Config, cfg),
		container.WithInstance(aware.Log, logger),
		container.WithInstance(aware.FileManager, files),
		container.WithInstance(aware.DataCache, data),
	)
	require.NoError(t, err)

	r, err := container.Make[*runner](c, "Runner")
	require.NoError(t, err)

	assert.Same(t, cfg, r.cfg)
	assert.Same(t, logger, r.log)
	assert.Same(t, files, r.files)
	assert.Same(t, data, r.data)
	assert.Equal(t, c.ID(), r.c.ID(), "the container itself, bound to the build")
}

func TestDefaults_Services(t *testing.T) {
	var names []string
	for _, capability := range aware.Defaults() {
		names = append(names, capability.Service())
	}
	assert.ElementsMatch(t, []string{"config", "log", "fileManager", "dataCache", "container"}, names)
}
