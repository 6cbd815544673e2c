package container_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/class"
	"github.com/km-arc/go-container/framework/container"
)

type LoggerAware interface{ SetLogger(Logger) }

type ClockAware interface{ SetClock(*Clock) }

type Job struct {
	logger Logger
	clock  *Clock
}

func (j *Job) SetLogger(l Logger) { j.logger = l }
func (j *Job) SetClock(c *Clock)  { j.clock = c }

// LoggedJob takes its logger through the constructor.
type LoggedJob struct{ Job }

func awareClasses() *class.Registry {
	reg := classes()
	reg.MustRegister(
		class.MustNew("Job", func() *Job { return &Job{} }),
		class.MustNew("LoggedJob", func(logger Logger) *LoggedJob {
			return &LoggedJob{Job: Job{logger: &memLogger{name: "ctor"}}}
		}, class.Arg("logger")),
	)
	return reg
}

func awareOptions() []container.Option {
	return []container.Option{
		container.WithAware(
			container.Aware("logger", LoggerAware.SetLogger),
			container.Aware("clock", ClockAware.SetClock),
		),
		container.WithConfiguration(container.Definitions{
			"logger": {ClassName: "MemLogger"},
			"clock":  {ClassName: "Clock"},
			"job":    {ClassName: "Job"},
		}),
	}
}

func TestAware_InjectsAfterConstruction(t *testing.T) {
	c := newContainer(t, awareClasses(), awareOptions()...)

	job, err := container.Resolve[*Job](c, "job")
	require.NoError(t, err)

	logger, err := c.Get("logger")
	require.NoError(t, err)
	clock, err := c.Get("clock")
	require.NoError(t, err)
	assert.Same(t, logger.(*memLogger), job.logger.(*memLogger))
	assert.Same(t, clock.(*Clock), job.clock)
}

func TestAware_SkipList(t *testing.T) {
	opts := append(awareOptions(), container.WithAwareSkip("clock"))
	c := newContainer(t, awareClasses(), opts...)

	v, err := c.Factory().Create("Job")
	require.NoError(t, err)

	job := v.(*Job)
	assert.NotNil(t, job.logger)
	assert.Nil(t, job.clock)
	assert.False(t, c.Resolved("clock"))
}

func TestAware_ConstructorParameterWins(t *testing.T) {
	c := newContainer(t, awareClasses(), awareOptions()...)

	v, err := c.Factory().Create("LoggedJob")
	require.NoError(t, err)

	job := v.(*LoggedJob)
	assert.Equal(t, "ctor", job.logger.(*memLogger).name)
	assert.NotNil(t, job.clock)
}

func TestAware_NotImplementedIsIgnored(t *testing.T) {
	c := newContainer(t, awareClasses(), awareOptions()...)

	_, err := c.Factory().Create("Clock")
	require.NoError(t, err)
	assert.False(t, c.Resolved("logger"))
}

func TestAware_MissingServiceFails(t *testing.T) {
	c := newContainer(t, awareClasses(), container.WithAware(container.Aware("logger", LoggerAware.SetLogger)))

	_, err := c.Factory().Create("Job")

	var depErr *container.DependencyResolutionError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "Job", depErr.Class)
	assert.Equal(t, "logger", depErr.Param)
	assert.ErrorIs(t, err, container.ErrServiceNotFound)
}

func TestAware_ServiceOfWrongType(t *testing.T) {
	c := newContainer(t, awareClasses(),
		container.WithAware(container.Aware("logger", LoggerAware.SetLogger)),
		container.WithInstance("logger", "not a logger"),
	)

	_, err := c.Factory().Create("Job")
	assert.ErrorIs(t, err, container.ErrDependencyResolution)
}

func TestAware_FreshDependencyIsInjected(t *testing.T) {
	type Holder struct{ Job *Job }
	reg := awareClasses()
	reg.MustRegister(class.MustNew("Holder", func(job *Job) *Holder { return &Holder{Job: job} }, class.Arg("work")))
	c := newContainer(t, reg, awareOptions()...)

	v, err := c.Factory().Create("Holder")
	require.NoError(t, err)
	assert.NotNil(t, v.(*Holder).Job.logger)
}

func TestCapability_Accessors(t *testing.T) {
	capability := container.Aware("logger", LoggerAware.SetLogger)

	assert.Equal(t, "logger", capability.Service())
	assert.Equal(t, reflect.TypeOf((*LoggerAware)(nil)).Elem(), capability.Interface())
}
