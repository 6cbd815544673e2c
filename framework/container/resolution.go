package container

import (
	"slices"
	"sync/atomic"
)

// resolution is the path of services and classes being built by one
// top-level call. It travels down the call explicitly, so concurrent callers
// never share it.
type resolution struct {
	path []string
	done atomic.Bool
}

func newResolution() *resolution { return &resolution{} }

func serviceKey(name string) string { return "service:" + name }
func classKey(name string) string   { return "class:" + name }

// enter pushes key, failing if it is already on the path.
func (r *resolution) enter(key string) error {
	if i := slices.Index(r.path, key); i >= 0 {
		cycle := append(slices.Clone(r.path[i:]), key)
		return &CyclicDependencyError{Path: cycle}
	}
	r.path = append(r.path, key)
	return nil
}

func (r *resolution) leave() { r.path = r.path[:len(r.path)-1] }

func (r *resolution) depth() int { return len(r.path) }

// finish marks the top-level call as returned. Views bound to r stop joining
// it.
func (r *resolution) finish() { r.done.Store(true) }

func (r *resolution) active() bool { return r != nil && !r.done.Load() }
