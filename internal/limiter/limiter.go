// Package limiter gates operations so that a workflow never runs more than a
// fixed number of submissions at once. A rejected caller gets an immediate
// answer instead of queueing, mirroring a disabled submit button.
package limiter

import (
	"strings"
	"sync"

	"github.com/ftwtie/pdfmerger/internal/metrics"
)

// Gate hands out in-process slots per key.
type Gate struct {
	maxInflight int
	mu          sync.Mutex
	sem         map[string]chan struct{}
}

type Options struct {
	MaxInflight int // per key, defaults to 1
}

func New(opts Options) *Gate {
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = 1
	}
	return &Gate{maxInflight: opts.MaxInflight, sem: map[string]chan struct{}{}}
}

// Allow tries to reserve a slot for key. It returns a release function and
// true on success. The release function is safe to call more than once.
func (g *Gate) Allow(key string) (func(), bool) {
	key = strings.ToLower(key)
	g.mu.Lock()
	ch, ok := g.sem[key]
	if !ok {
		ch = make(chan struct{}, g.maxInflight)
		g.sem[key] = ch
	}
	g.mu.Unlock()
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, true
	default:
		metrics.IncRejection()
		return func() {}, false
	}
}

// InFlight reports how many slots of key are taken.
func (g *Gate) InFlight(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.sem[strings.ToLower(key)]; ok {
		return len(ch)
	}
	return 0
}
