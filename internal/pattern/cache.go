package pattern

import "sync"

// Cache memoizes compiled patterns for the lifetime of the engine instance
// that owns it. Entries are never evicted; the expected population is the
// bounded set of call-site pattern literals. Concurrent first compiles of
// the same text are wasteful but safe: the first stored entry wins, so
// readers never observe two identities for one pattern.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CompiledPattern
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CompiledPattern)}
}

// Load returns the compiled form of the pattern-condition text, compiling
// and storing it on first use. Compile failures are not cached; a malformed
// pattern fails the same way on every call.
func (c *Cache) Load(text string) (*CompiledPattern, error) {
	c.mu.RLock()
	compiled, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := Compile(text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[text]; ok {
		return existing, nil
	}
	c.entries[text] = compiled
	return compiled, nil
}

// Len reports the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
