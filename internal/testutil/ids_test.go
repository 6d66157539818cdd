package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("run")
	assert.Equal(t, "run-0001", ids.Generate())
	assert.Equal(t, "run-0002", ids.Generate())

	ids.Reset()
	assert.Equal(t, "run-0001", ids.Generate())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "build-0001", NewSequentialIDs("").Generate())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs("")
	const workers, calls = 10, 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				id := ids.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls, "ids are unique")
}
