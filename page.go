package mediapager

import "context"

// Page is what a PageProvider hands back for one page request.
type Page[T any] struct {
	// Items page elements.
	Items []T
	// Total number of elements known to the provider.
	Total int
	// AtEnd is true when no further page follows.
	AtEnd bool
}

// PageProvider supplies pages to a SequentialPager. Every call returns the page after the
// one returned previously.
type PageProvider[T any] interface {
	FetchPage(ctx context.Context, pageSize int) (Page[T], error)
}

// PageProviderFunc adapts a function to PageProvider.
type PageProviderFunc[T any] func(ctx context.Context, pageSize int) (Page[T], error)

// FetchPage - implements PageProvider.
func (f PageProviderFunc[T]) FetchPage(ctx context.Context, pageSize int) (Page[T], error) {
	return f(ctx, pageSize)
}
