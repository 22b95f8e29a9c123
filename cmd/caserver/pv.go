package main

import (
	"sync"

	"github.com/caproto-go/caproto/internal/ca/dbr"
)

// pv is one in-memory process variable this demo server hosts. Real CA
// servers back this with a process database; caserver exists to exercise
// internal/ca/circuit's SERVER role, so a map is enough.
type pv struct {
	mu    sync.Mutex
	typ   dbr.Type
	count uint32
	value dbr.Value
}

func (p *pv) read() dbr.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *pv) write(v dbr.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
}

// registry is the fixed set of PVs this server answers CreateChanRequest
// for. Populated once at startup in main.
type registry struct {
	mu  sync.RWMutex
	pvs map[string]*pv
}

func newRegistry() *registry {
	return &registry{pvs: make(map[string]*pv)}
}

func (r *registry) add(name string, typ dbr.Type, count uint32, initial dbr.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pvs[name] = &pv{typ: typ, count: count, value: initial}
}

func (r *registry) lookup(name string) (*pv, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pvs[name]
	return p, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pvs))
	for name := range r.pvs {
		names = append(names, name)
	}
	return names
}
