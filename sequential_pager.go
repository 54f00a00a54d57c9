package mediapager

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// SequentialPager requests pages from a PageProvider one after another and accumulates
// them into the list a consumer renders. Items that become visible, by a page load or a
// replacement of the list, are published to observers registered with ObserveAdditions.
type SequentialPager[T any] struct {
	// loadMu serializes page loads and item replacements so a replacement never
	// interleaves with a page being appended.
	loadMu sync.Mutex

	mu        sync.RWMutex
	provider  PageProvider[T]
	pageSize  int
	equal     func(a, b T) bool
	items     []T
	total     int
	atEnd     bool
	connected bool
	cancel    context.CancelFunc

	observersMu sync.RWMutex
	observers   map[uuid.UUID]func([]T)

	onConnect    []func(ctx context.Context)
	onDisconnect []func()
}

func NewSequentialPager[T any](provider PageProvider[T]) *SequentialPager[T] {
	return (&SequentialPager[T]{}).WithProvider(provider).WithPageSize(DefaultPageSize)
}

// WithProvider sets the page provider.
func (p *SequentialPager[T]) WithProvider(provider PageProvider[T]) *SequentialPager[T] {
	if p == nil {
		p = new(SequentialPager[T])
	}

	p.provider = provider

	return p
}

// WithPageSize sets the number of items requested per page. NormalizePageSize is applied.
func (p *SequentialPager[T]) WithPageSize(pageSize int) *SequentialPager[T] {
	if p == nil {
		p = new(SequentialPager[T])
	}

	p.pageSize = NormalizePageSize(pageSize)

	return p
}

// WithEqual sets how a replacement list is matched against the visible one. Without it
// every item of a replacement counts as newly visible.
func (p *SequentialPager[T]) WithEqual(equal func(a, b T) bool) *SequentialPager[T] {
	if p == nil {
		p = new(SequentialPager[T])
	}

	p.equal = equal

	return p
}

// OnConnect registers a hook run by Connect with a context that is cancelled on
// Disconnect.
func (p *SequentialPager[T]) OnConnect(hook func(ctx context.Context)) *SequentialPager[T] {
	if p == nil {
		p = new(SequentialPager[T])
	}

	p.onConnect = append(p.onConnect, hook)

	return p
}

// OnDisconnect registers a hook run by Disconnect.
func (p *SequentialPager[T]) OnDisconnect(hook func()) *SequentialPager[T] {
	if p == nil {
		p = new(SequentialPager[T])
	}

	p.onDisconnect = append(p.onDisconnect, hook)

	return p
}

func (p *SequentialPager[T]) validate() error {
	if p == nil {
		return fmt.Errorf("sequential pager is nil")
	}

	if p.provider == nil {
		return fmt.Errorf("page provider is nil")
	}

	return nil
}

// LoadNextPage requests the next page from the provider and appends it to Items. Once
// the provider reported the end, no further requests are made.
func (p *SequentialPager[T]) LoadNextPage(ctx context.Context) (Page[T], error) {
	if err := p.validate(); err != nil {
		return Page[T]{}, fmt.Errorf("cannot load page: %w", err)
	}

	p.loadMu.Lock()

	p.mu.RLock()
	atEnd, total := p.atEnd, p.total
	p.mu.RUnlock()

	if atEnd {
		p.loadMu.Unlock()
		return Page[T]{Total: total, AtEnd: true}, nil
	}

	page, err := p.provider.FetchPage(ctx, p.pageSize)
	if err != nil {
		p.loadMu.Unlock()
		return Page[T]{}, fmt.Errorf("provider failed to fetch page: %w", err)
	}

	p.mu.Lock()
	p.items = append(p.items, page.Items...)
	p.total = page.Total
	p.atEnd = page.AtEnd
	p.mu.Unlock()

	p.loadMu.Unlock()

	if len(page.Items) > 0 {
		p.emitAdditions(slices.Clone(page.Items))
	}

	return page, nil
}

// ReplaceItems swaps the visible list, bypassing the provider.
func (p *SequentialPager[T]) ReplaceItems(items []T, atEnd bool) {
	p.ReplaceItemsWith(func([]T, bool) ([]T, bool) {
		return items, atEnd
	})
}

// ReplaceItemsWith runs replace while no page load is in progress and makes its result
// the visible list. replace receives the current list and end flag and must not modify
// the list; returning them unchanged keeps the pager as it is. Use it when the provider
// state and the visible list must change together. Items of the new list that were not
// visible before are published to the additions observers.
func (p *SequentialPager[T]) ReplaceItemsWith(replace func(items []T, atEnd bool) ([]T, bool)) {
	p.loadMu.Lock()

	previous := p.items
	items, atEnd := replace(previous, p.atEnd)

	p.mu.Lock()
	p.items = slices.Clone(items)
	p.atEnd = atEnd
	p.mu.Unlock()

	p.loadMu.Unlock()

	if added := p.newlyVisible(previous, items); len(added) > 0 {
		p.emitAdditions(added)
	}
}

func (p *SequentialPager[T]) newlyVisible(previous, items []T) []T {
	if p.equal == nil {
		return slices.Clone(items)
	}

	return lo.Filter(items, func(item T, _ int) bool {
		return !slices.ContainsFunc(previous, func(prev T) bool { return p.equal(prev, item) })
	})
}

// Items returns a copy of the visible list.
func (p *SequentialPager[T]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.items)
}

// Total returns the total reported with the last page.
func (p *SequentialPager[T]) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.total
}

// AtEnd returns true when the provider has no more pages.
func (p *SequentialPager[T]) AtEnd() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.atEnd
}

// PageSize returns the normalized page size.
func (p *SequentialPager[T]) PageSize() int {
	if p == nil {
		return 0
	}

	return p.pageSize
}

// ObserveAdditions registers fn to receive every batch appended by LoadNextPage and the
// newly visible part of every replacement. The returned function unregisters it.
func (p *SequentialPager[T]) ObserveAdditions(fn func(items []T)) (unsubscribe func()) {
	id := uuid.New()

	p.observersMu.Lock()
	if p.observers == nil {
		p.observers = make(map[uuid.UUID]func([]T))
	}
	p.observers[id] = fn
	p.observersMu.Unlock()

	return func() {
		p.observersMu.Lock()
		defer p.observersMu.Unlock()

		delete(p.observers, id)
	}
}

func (p *SequentialPager[T]) emitAdditions(items []T) {
	p.observersMu.RLock()
	defer p.observersMu.RUnlock()

	for _, fn := range p.observers {
		fn(items)
	}
}

// Connect runs the connect hooks. Connecting a connected pager does nothing.
func (p *SequentialPager[T]) Connect(ctx context.Context) {
	p.mu.Lock()
	if p.connected {
		p.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.connected = true
	p.cancel = cancel
	p.mu.Unlock()

	for _, hook := range p.onConnect {
		hook(ctx)
	}
}

// Disconnect cancels the context handed to the connect hooks and runs the disconnect
// hooks. Disconnecting a disconnected pager does nothing.
func (p *SequentialPager[T]) Disconnect() {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return
	}

	cancel := p.cancel
	p.connected = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	for _, hook := range p.onDisconnect {
		hook()
	}
}

// Connected reports whether Connect was called without a matching Disconnect.
func (p *SequentialPager[T]) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.connected
}
