// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates "<prefix>-0001", "<prefix>-0002", ... so build
// ids in tests and golden output are stable.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequentialIDs creates a generator. An empty prefix means "build".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "build"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id. Implements store.IDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Reset restarts the sequence, so the next id ends in 0001.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
