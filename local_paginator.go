package mediapager

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type loadState int

const (
	loadNotStarted loadState = iota
	loadLoading
	loadLoaded
)

func (s loadState) String() string {
	switch s {
	case loadNotStarted:
		return "not_started"
	case loadLoading:
		return "loading"
	case loadLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// LocalPaginator serves pages out of a buffer that is drained from the remote source on
// the first page request. It implements PageProvider.
type LocalPaginator struct {
	fetcher  *bulkFetcher
	engine   *SortEngine
	prefs    PreferenceStore
	sourceID string
	logger   zerolog.Logger

	group singleflight.Group

	mu         sync.RWMutex
	buffer     []*MediaObject
	state      loadState
	generation int
	cursor     int
	sort       *SortSpec
}

// FetchPage - implements PageProvider. The first call drains the remote source and
// applies the stored sort preference before slicing. It never fails: a source that could
// not be drained yields short or empty pages.
func (p *LocalPaginator) FetchPage(ctx context.Context, pageSize int) (Page[*MediaObject], error) {
	p.ensureLoaded(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	start := min(p.cursor*pageSize, len(p.buffer))
	end := min((p.cursor+1)*pageSize, len(p.buffer))

	page := Page[*MediaObject]{
		Items: make([]*MediaObject, end-start),
		Total: len(p.buffer),
		AtEnd: (p.cursor+1)*pageSize >= len(p.buffer),
	}
	copy(page.Items, p.buffer[start:end])
	p.cursor++

	PageRequests.WithLabelValues(sourceLabel(p.sourceID)).Inc()
	p.logger.Debug().
		Int("page", p.cursor).
		Int("items", len(page.Items)).
		Int("total", page.Total).
		Bool("at_end", page.AtEnd).
		Msg("page served")

	return page, nil
}

// ensureLoaded drains the source once. Concurrent first requests share the same drain.
func (p *LocalPaginator) ensureLoaded(ctx context.Context) {
	p.mu.RLock()
	state := p.state
	p.mu.RUnlock()

	if state == loadLoaded {
		return
	}

	_, _, _ = p.group.Do("load", func() (any, error) {
		p.mu.Lock()
		if p.state == loadLoaded {
			p.mu.Unlock()
			return nil, nil
		}
		p.state = loadLoading
		generation := p.generation
		p.mu.Unlock()

		// The buffer serves every later caller; a cancelled first caller must not
		// truncate it.
		ctx := context.WithoutCancel(ctx)

		buffer := p.fetcher.drain(ctx)
		spec := p.storedPreference(ctx)
		p.engine.Apply(buffer, spec)

		p.mu.Lock()
		defer p.mu.Unlock()

		if generation != p.generation {
			p.logger.Debug().Msg("buffer invalidated while loading, dropping drained objects")
			return nil, nil
		}

		p.buffer = buffer
		p.sort = spec
		p.state = loadLoaded

		return nil, nil
	})
}

func (p *LocalPaginator) storedPreference(ctx context.Context) *SortSpec {
	if p.prefs == nil || p.sourceID == "" {
		return nil
	}

	spec, err := p.prefs.GetPreference(ctx, p.sourceID)
	if err != nil {
		p.logger.Warn().Err(err).Msg("cannot read sort preference, keeping remote order")
		return nil
	}

	return spec
}

// Resort applies spec to a loaded, non-empty buffer and resets the page cursor. It
// returns the first page of the reordered buffer and whether the sort was applied.
func (p *LocalPaginator) Resort(spec *SortSpec, pageSize int) ([]*MediaObject, bool, bool) {
	if spec == nil {
		return nil, false, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buffer) == 0 {
		return nil, false, false
	}

	p.engine.Apply(p.buffer, spec)
	p.sort = spec

	first, atEnd := p.resetLocked(pageSize)

	return first, atEnd, true
}

// Reset rewinds to the start of the buffer. The first page is handed back directly and
// counted as served, so the following FetchPage returns the second page.
func (p *LocalPaginator) Reset(pageSize int) ([]*MediaObject, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.resetLocked(pageSize)
}

func (p *LocalPaginator) resetLocked(pageSize int) ([]*MediaObject, bool) {
	end := min(pageSize, len(p.buffer))
	p.cursor = 1

	return slices.Clone(p.buffer[:end]), pageSize >= len(p.buffer)
}

// Invalidate drops the buffer; the next page request drains the source again.
func (p *LocalPaginator) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buffer = nil
	p.state = loadNotStarted
	p.generation++
	p.cursor = 0
	p.sort = nil
}

// Len returns the number of buffered objects.
func (p *LocalPaginator) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.buffer)
}

// Cursor returns the number of pages served since the last load or reset.
func (p *LocalPaginator) Cursor() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.cursor
}

// Loaded reports whether the buffer holds the drained source.
func (p *LocalPaginator) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.state == loadLoaded
}

// SortSpec returns the sort last applied to the buffer, nil for remote order.
func (p *LocalPaginator) SortSpec() *SortSpec {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return copySortSpec(p.sort)
}

// Buffer returns a copy of the buffer in its current order.
func (p *LocalPaginator) Buffer() []*MediaObject {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.buffer)
}

var _ PageProvider[*MediaObject] = (*LocalPaginator)(nil)
