package policy

import (
	"container/list"
	"sync"
)

// FIFO implements the Policy interface using a first-in-first-out strategy.
// Insertion order alone decides eviction; reads never reorder keys.
type FIFO[K comparable] struct {
	items    map[K]*list.Element
	list     *list.List
	mu       sync.Mutex
	capacity int
}

// NewFIFO creates a new FIFO policy
func NewFIFO[K comparable](opts ...Option) *FIFO[K] {
	options := &Options{
		MaxSize: 1000,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &FIFO[K]{
		items:    make(map[K]*list.Element),
		list:     list.New(),
		capacity: options.MaxSize,
	}
}

// OnGet is called when a key is read from the cache. FIFO ignores reads.
func (p *FIFO[K]) OnGet(key K) {}

// OnSet is called when a key is written to the cache
func (p *FIFO[K]) OnSet(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.items[key]; exists {
		// Overwrites keep the original insertion position
		return
	}
	element := p.list.PushFront(key)
	p.items[key] = element
}

// OnDelete is called when a key is removed from the cache
func (p *FIFO[K]) OnDelete(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if element, exists := p.items[key]; exists {
		p.list.Remove(element)
		delete(p.items, key)
	}
}

// OnClear is called when the cache is cleared
func (p *FIFO[K]) OnClear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.list = list.New()
	p.items = make(map[K]*list.Element)
}

// Evict returns the oldest inserted key, removing it from the policy
func (p *FIFO[K]) Evict() (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	element := p.list.Back()
	if element == nil {
		var zero K
		return zero, false
	}

	key := element.Value.(K)
	p.list.Remove(element)
	delete(p.items, key)
	return key, true
}

// Size returns the number of keys tracked by the policy
func (p *FIFO[K]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Len()
}

// Capacity returns the maximum number of keys the policy can hold
func (p *FIFO[K]) Capacity() int {
	return p.capacity
}
