package client

import "sync"

// SubmitGuard allows one in-flight save per key. A second save for the
// same key is refused until the first releases it.
type SubmitGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{inFlight: make(map[string]struct{})}
}

func (g *SubmitGuard) Acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, false
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, true
}
