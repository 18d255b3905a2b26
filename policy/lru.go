package policy

import (
	"container/list"
	"sync"
)

// LRU implements the Policy interface using a least-recently-used strategy.
// The key with the oldest access moves to the back of the list and is the
// first eviction candidate.
type LRU[K comparable] struct {
	items    map[K]*list.Element
	list     *list.List
	mu       sync.Mutex
	capacity int
}

// NewLRU creates a new LRU policy
func NewLRU[K comparable](opts ...Option) *LRU[K] {
	options := &Options{
		MaxSize: 1000,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &LRU[K]{
		items:    make(map[K]*list.Element),
		list:     list.New(),
		capacity: options.MaxSize,
	}
}

// OnGet is called when a key is read from the cache
func (p *LRU[K]) OnGet(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if element, exists := p.items[key]; exists {
		p.list.MoveToFront(element)
	}
}

// OnSet is called when a key is written to the cache
func (p *LRU[K]) OnSet(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if element, exists := p.items[key]; exists {
		p.list.MoveToFront(element)
		return
	}
	element := p.list.PushFront(key)
	p.items[key] = element
}

// OnDelete is called when a key is removed from the cache
func (p *LRU[K]) OnDelete(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if element, exists := p.items[key]; exists {
		p.list.Remove(element)
		delete(p.items, key)
	}
}

// OnClear is called when the cache is cleared
func (p *LRU[K]) OnClear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.list = list.New()
	p.items = make(map[K]*list.Element)
}

// Evict returns the least recently used key, removing it from the policy
func (p *LRU[K]) Evict() (K, bool) {
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
func (p *LRU[K]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Len()
}

// Capacity returns the maximum number of keys the policy can hold
func (p *LRU[K]) Capacity() int {
	return p.capacity
}
