package window

import (
	"sync/atomic"

	"github.com/cptaffe/acme-brackets"
	"github.com/cptaffe/acme-brackets/config"
	"github.com/cptaffe/acme-brackets/syntax"
)

// Cache is the mark cache shared by all windows, keyed by acme window ID and
// stamped with each window's body revision.
type Cache = brackets.Cache[int, uint64]

// settings is one immutable generation of configuration.
type settings struct {
	gen      uint64
	cfg      *config.Config
	handlers []syntax.Handler
	gov      *brackets.Governor
}

// Shared is the state every window goroutine reads.  Reload swaps it
// atomically; sessions notice the new generation on their next poll.
type Shared struct {
	Cache   *Cache
	metrics *brackets.Metrics
	cur     atomic.Pointer[settings]
	revs    atomic.Uint64
}

// NewShared returns Shared state for cfg and handlers.  m may be nil.
func NewShared(cfg *config.Config, handlers []syntax.Handler, m *brackets.Metrics) *Shared {
	s := &Shared{
		Cache:   brackets.NewCache[int, uint64](m),
		metrics: m,
	}
	s.cur.Store(&settings{
		cfg:      cfg,
		handlers: handlers,
		gov:      brackets.NewGovernor(cfg.Limits(), m),
	})
	return s
}

// Reload installs a new configuration and drops every cached scan, since
// the kinds admitted may have changed.
func (s *Shared) Reload(cfg *config.Config, handlers []syntax.Handler) {
	prev := s.cur.Load()
	s.cur.Store(&settings{
		gen:      prev.gen + 1,
		cfg:      cfg,
		handlers: handlers,
		gov:      brackets.NewGovernor(cfg.Limits(), s.metrics),
	})
	s.Cache.Clear()
}

// Config returns the configuration currently in effect.
func (s *Shared) Config() *config.Config { return s.cur.Load().cfg }

func (s *Shared) current() *settings { return s.cur.Load() }

// nextRevision returns a cache stamp never handed out before.  Stamps come
// from one counter for every window and session, so a retried session can
// never reuse the stamp of a body read by an earlier one.
func (s *Shared) nextRevision() uint64 { return s.revs.Add(1) }
