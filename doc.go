package mediapager

// Package mediapager pages through remote media catalogs on the client and re-sorts them
// locally.
//
// Overview
//
// A CatalogPager drains a cursor/offset paginated catalog endpoint into a bounded
// in-memory buffer on the first page request and then serves consumer pages out of that
// buffer. When the sort preference of the listing changes, the buffer is re-sorted in
// place and the visible list is replaced with the first page of the new order, without
// another round-trip to the remote.
//
// Key concepts
//   - SequentialPager: generic engine that requests pages from a PageProvider, keeps the
//     visible list and publishes appended batches.
//   - LocalPaginator: PageProvider over the drained buffer. The drain is single-flight.
//   - SortEngine: stable sort of the buffer with locale-aware, numeric-aware collation.
//     Sortable artists sorted by added_at are only reversed.
//   - PreferenceStore: point read plus change stream of per-listing SortSpecs, in memory
//     or persisted with GORM.
//   - Retrier: wraps every remote call; BreakerRetrier adds backoff and a circuit breaker.
//
// Remote failures never surface to page requests: the buffer keeps what was drained.
//
// See examples/ for runnable programs.
