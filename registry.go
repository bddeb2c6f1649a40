package countme

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Registry maps Go types to their instance counters.
// It is concurrency-safe. Entries are created on first use and are never removed;
// Reset only zeroes their counters.
type Registry struct {
	cfg    *registryConfig
	logger atomic.Pointer[zerolog.Logger]

	entries sync.Map // map[reflect.Type]*store
	// per-key init mutexes: protect concurrent registration of the same type
	inits sync.Map // map[reflect.Type]*sync.Mutex
	size  atomic.Int64

	violations atomic.Int32
}

// NewRegistry constructs a new Registry.
// Accepts optional functional options to customize behavior.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	r := &Registry{cfg: cfg}
	l := cfg.logger
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}
	r.logger.Store(l)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry used by New, Get, GetAll and ResetAll.
// It is created on first use and lives until the process exits.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// SetLogger replaces the registry logger. Safe to call concurrently with counting.
func (r *Registry) SetLogger(l zerolog.Logger) {
	r.logger.Store(&l)
}

func (r *Registry) log() *zerolog.Logger {
	return r.logger.Load()
}

// Acquire accounts one new instance of t.
func (r *Registry) Acquire(t reflect.Type) {
	r.getOrCreate(t).onCreate()
}

// Release accounts one released instance of t. Releasing a type that was never
// acquired does nothing.
func (r *Registry) Release(t reflect.Type) {
	if s, ok := r.lookup(t); ok {
		s.onDestroy()
	}
}

// keyMu returns a per-key mutex for the given type, creating one if necessary.
func (r *Registry) keyMu(t reflect.Type) *sync.Mutex {
	m, _ := r.inits.LoadOrStore(t, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// lookup retrieves an existing entry without creating one.
func (r *Registry) lookup(t reflect.Type) (*store, bool) {
	v, ok := r.entries.Load(t)
	if !ok {
		return nil, false
	}
	s, ok := v.(*store)
	if !ok {
		r.reportInvariantViolation("entry_type", t)
		return nil, false
	}
	return s, true
}

// getOrCreate implements a lock-free read path, computes the display name before
// acquiring locks, and uses a per-key mutex to deduplicate concurrent registrations.
func (r *Registry) getOrCreate(t reflect.Type) *store {
	// fast read path using sync.Map loads (safe without a global lock)
	if s, ok := r.lookup(t); ok {
		return s
	}

	// compute the name off-lock
	name := typeName(t)

	km := r.keyMu(t)
	km.Lock()
	defer km.Unlock()

	// re-check after acquiring per-key mutex
	if s, ok := r.lookup(t); ok {
		return s
	}
	s := newStore(name)
	r.entries.Store(t, s)
	r.size.Add(1)
	// It's safe to delete while holding the mutex; goroutines that already
	// hold the pointer will re-check and find the stored entry.
	if !r.cfg.doNotCleanupInits {
		r.inits.Delete(t)
	}
	r.log().Debug().Str("type", name).Msg("countme: tracking new type")
	return s
}

// reportInvariantViolation reports unexpected internal states such as a foreign
// value stored in the entries map. In release builds it logs up to 10 times;
// in debug builds (or under race detector) it panics to catch bugs early.
func (r *Registry) reportInvariantViolation(kind string, t reflect.Type) {
	const maxReports = 10
	if r.violations.Add(1) > maxReports {
		return
	}

	msg := "[countme] invariant violation: " + kind + " for " + t.String()

	if isDebugBuild() {
		panic(msg)
	}

	r.log().Warn().Str("kind", kind).Str("type", t.String()).Msg(msg)
}

// isDebugBuild reports whether we're in a "debug" or "race" build.
func isDebugBuild() bool {
	return raceBuild || debugBuild
}
