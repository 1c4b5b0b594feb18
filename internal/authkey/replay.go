package authkey

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ReplayGuard remembers (path, rand) pairs so one signed URL is honoured once per window.
type ReplayGuard struct {
	cache  *lru.Cache[string, time.Time]
	window time.Duration
}

func NewReplayGuard(maxKeys int, window time.Duration) *ReplayGuard {
	if maxKeys <= 0 {
		maxKeys = 1024
	}
	c, _ := lru.New[string, time.Time](maxKeys)
	return &ReplayGuard{cache: c, window: window}
}

// Seen reports whether the pair was already recorded within the window, and records it.
func (g *ReplayGuard) Seen(path, nonce string, now time.Time) bool {
	k := path + "|" + nonce
	if at, ok := g.cache.Get(k); ok {
		if g.window <= 0 || now.Sub(at) < g.window {
			return true
		}
	}
	g.cache.Add(k, now)
	return false
}

func (g *ReplayGuard) Len() int {
	return g.cache.Len()
}
