package cart

import (
	"sync"
	"time"

	"storefront-service/internal/session"
)

const (
	defaultDebounce    = 800 * time.Millisecond
	defaultCallTimeout = 10 * time.Second
)

// Registry hands out one Workflow per session so debounce timers and raw
// edits survive between requests.
type Registry struct {
	api         API
	debounce    time.Duration
	callTimeout time.Duration

	mu    sync.Mutex
	flows map[string]*Workflow
}

type Option func(*Registry)

func WithDebounce(d time.Duration) Option {
	return func(r *Registry) { r.debounce = d }
}

func WithCallTimeout(d time.Duration) Option {
	return func(r *Registry) { r.callTimeout = d }
}

func NewRegistry(api API, opts ...Option) *Registry {
	r := &Registry{
		api:         api,
		debounce:    defaultDebounce,
		callTimeout: defaultCallTimeout,
		flows:       make(map[string]*Workflow),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForSession returns the session's workflow, creating it on first use. The
// session pointer is refreshed on every call so deferred tasks always see
// the latest token.
func (r *Registry) ForSession(sess *session.Session) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.flows[sess.ID]
	if !ok {
		w = &Workflow{
			api:         r.api,
			debounce:    newScheduler(r.debounce),
			callTimeout: r.callTimeout,
			raw:         make(map[int64]string),
			nextSeq:     make(map[int64]uint64),
			applied:     make(map[int64]uint64),
		}
		r.flows[sess.ID] = w
	}
	w.mu.Lock()
	w.sess = sess
	w.mu.Unlock()
	return w
}

// Drop tears down the session's workflow, abandoning pending debounce tasks.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	w, ok := r.flows[sessionID]
	if ok {
		delete(r.flows, sessionID)
	}
	r.mu.Unlock()
	if ok {
		w.Stop()
	}
}
