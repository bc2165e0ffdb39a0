// Package namepool implements the themed name generator servitors draw
// their display names from: an ordered sequence of tiers, each an
// ordered list of names, with deterministic fallback once every tier is
// exhausted.
package namepool

import (
	"fmt"
	"sync"

	"github.com/loupgaroublond/tavern/internal/config"
)

// Generator draws unique names from a themed, tiered pool with a
// monotonic synthetic fallback. All operations are serialized internally
// so concurrent summon calls never hand out the same name twice.
type Generator struct {
	mu sync.Mutex

	tiers   [][]string
	cursors []int // per-tier next-index cursor
	tier    int   // current tier cursor

	used     map[string]struct{}
	fallback uint64
}

// New builds a Generator from a loaded theme.
func New(theme *config.Theme) *Generator {
	tiers := make([][]string, len(theme.Tiers))
	copy(tiers, theme.Tiers)

	return &Generator{
		tiers:   tiers,
		cursors: make([]int, len(tiers)),
		used:    make(map[string]struct{}),
	}
}

// NextName advances through tiers in order, returning the first unused
// name, or "" if every tier is exhausted.
func (g *Generator) NextName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextNameLocked()
}

func (g *Generator) nextNameLocked() string {
	for g.tier < len(g.tiers) {
		tier := g.tiers[g.tier]
		for g.cursors[g.tier] < len(tier) {
			name := tier[g.cursors[g.tier]]
			g.cursors[g.tier]++
			if _, taken := g.used[name]; !taken {
				g.used[name] = struct{}{}
				return name
			}
		}
		g.tier++
	}
	return ""
}

// NextNameOrFallback is NextName, but returns a synthetic "Agent-N" name
// once every tier is exhausted. N is drawn from a monotonic counter and
// is guaranteed unique against the used-names set.
func (g *Generator) NextNameOrFallback() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name := g.nextNameLocked(); name != "" {
		return name
	}

	for {
		g.fallback++
		name := fmt.Sprintf("Agent-%d", g.fallback)
		if _, taken := g.used[name]; !taken {
			g.used[name] = struct{}{}
			return name
		}
	}
}

// Reserve conditionally adds name to the used-names set. Returns false if
// the name was already taken.
func (g *Generator) Reserve(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, taken := g.used[name]; taken {
		return false
	}
	g.used[name] = struct{}{}
	return true
}

// Release removes name from the used-names set, making it available
// again. Tier cursors are not rewound; a released name simply becomes
// reservable/returnable again.
func (g *Generator) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.used, name)
}

// IsReserved reports whether name is currently in the used-names set.
func (g *Generator) IsReserved(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.used[name]
	return taken
}

// Names returns a snapshot of every currently-used name, for the
// registry's "did you mean" suggestion on lookup misses.
func (g *Generator) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.used))
	for name := range g.used {
		names = append(names, name)
	}
	return names
}

// Reset clears all state: used names, tier cursors, and the fallback
// counter.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tier = 0
	for i := range g.cursors {
		g.cursors[i] = 0
	}
	g.used = make(map[string]struct{})
	g.fallback = 0
}
