package mediapager

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

const defaultItemKey = "id"

// CatalogOptions configures a CatalogPager. Every setter may be called on a nil value.
type CatalogOptions struct {
	pageSize     int
	itemKey      string
	passive      bool
	sourceID     string
	secondaryKey string
	inLibrary    bool

	prefs    PreferenceStore
	enricher Enricher
	retrier  Retrier
	mapper   ObjectMapper
	logger   *zerolog.Logger
	locale   *language.Tag
	config   *Config
}

func NewCatalogOptions() *CatalogOptions {
	return &CatalogOptions{itemKey: defaultItemKey}
}

// WithPageSize sets the consumer page size. Zero keeps the configured default.
func (o *CatalogOptions) WithPageSize(pageSize int) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.pageSize = pageSize

	return o
}

// WithItemKey sets the MediaObject field identifying objects for enrichment.
func (o *CatalogOptions) WithItemKey(key string) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.itemKey = key

	return o
}

// WithPassive disables the preference and enrichment subscriptions.
func (o *CatalogOptions) WithPassive(passive bool) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.passive = passive

	return o
}

// WithSortPreferenceID sets the identifier under which the sort preference of the
// listing is stored.
func (o *CatalogOptions) WithSortPreferenceID(sourceID string) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.sourceID = sourceID

	return o
}

// WithSecondarySortKey makes artist rows sortable artists tie-broken by key.
func (o *CatalogOptions) WithSecondarySortKey(key string) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.secondaryKey = key

	return o
}

func (o *CatalogOptions) WithInLibrary(inLibrary bool) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.inLibrary = inLibrary

	return o
}

func (o *CatalogOptions) WithPreferenceStore(prefs PreferenceStore) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.prefs = prefs

	return o
}

func (o *CatalogOptions) WithEnricher(enricher Enricher) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.enricher = enricher

	return o
}

// WithRetrier replaces the circuit breaker built from the retry config.
func (o *CatalogOptions) WithRetrier(retrier Retrier) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.retrier = retrier

	return o
}

func (o *CatalogOptions) WithMapper(mapper ObjectMapper) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.mapper = mapper

	return o
}

func (o *CatalogOptions) WithLogger(logger zerolog.Logger) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.logger = &logger

	return o
}

// WithLocale sets the collation locale, overriding the config.
func (o *CatalogOptions) WithLocale(tag language.Tag) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.locale = &tag

	return o
}

func (o *CatalogOptions) WithConfig(cfg Config) *CatalogOptions {
	if o == nil {
		o = NewCatalogOptions()
	}

	o.config = &cfg

	return o
}

func (o *CatalogOptions) validate() error {
	if o == nil {
		return fmt.Errorf("catalog options are nil")
	}

	if err := ValidateItemKey(o.itemKey); err != nil {
		return fmt.Errorf("invalid item key: %w", err)
	}

	if o.pageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", o.pageSize)
	}

	if o.config != nil {
		if err := o.config.validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	return nil
}

// CatalogPager pages through a remote catalog that is drained once into memory and
// re-sorted locally whenever the sort preference of the listing changes.
type CatalogPager struct {
	pager      *SequentialPager[*MediaObject]
	local      *LocalPaginator
	controller *resortController
	itemKey    string

	annotationsMu sync.RWMutex
	annotations   map[string]UserAnnotation
	// annotationGen is bumped by Invalidate; results of enrichment calls started
	// before that are dropped.
	annotationGen uint64
}

// NewCatalogPager builds a pager over fetch. opts may be nil.
func NewCatalogPager(fetch RemoteFetchFunc, opts *CatalogOptions) (*CatalogPager, error) {
	if fetch == nil {
		return nil, fmt.Errorf("remote fetch func is nil")
	}

	if opts == nil {
		opts = NewCatalogOptions()
	}

	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("cannot create catalog pager: %w", err)
	}

	cfg := DefaultConfig()
	if opts.config != nil {
		cfg = opts.config.normalized()
	}

	logger := zerolog.Nop()
	if opts.logger != nil {
		logger = *opts.logger
	}

	locale := lo.FromPtrOr(opts.locale, cfg.language())
	pageSize := lo.Ternary(opts.pageSize > 0, opts.pageSize, cfg.PageSize)

	retrier := opts.retrier
	if retrier == nil {
		retrier = NewBreakerRetrier(
			"mediapager-"+sourceLabel(opts.sourceID),
			cfg.Retry,
			logger,
		)
	}

	mapper := opts.mapper
	if mapper == nil {
		mapper = DefaultMapper{}
	}

	local := &LocalPaginator{
		fetcher: &bulkFetcher{
			fetch:        fetch,
			retrier:      retrier,
			mapper:       mapper,
			fetchSize:    cfg.FetchSize,
			maxItems:     cfg.MaxBufferedItems,
			secondaryKey: opts.secondaryKey,
			inLibrary:    opts.inLibrary,
			source:       opts.sourceID,
			logger:       componentLogger(logger, "bulk_fetcher", opts.sourceID),
		},
		engine:   NewSortEngine(NewComparator(locale)),
		prefs:    opts.prefs,
		sourceID: opts.sourceID,
		logger:   componentLogger(logger, "local_paginator", opts.sourceID),
	}

	cp := &CatalogPager{
		pager: NewSequentialPager[*MediaObject](local).
			WithPageSize(pageSize).
			WithEqual(func(a, b *MediaObject) bool { return a == b }),
		local:       local,
		itemKey:     opts.itemKey,
		annotations: make(map[string]UserAnnotation),
	}

	cp.controller = &resortController{
		pager:    cp.pager,
		local:    local,
		prefs:    opts.prefs,
		enricher: opts.enricher,
		sourceID: opts.sourceID,
		itemKey:  opts.itemKey,
		annotate: cp.annotationSink,
		logger:   componentLogger(logger, "resort_controller", opts.sourceID),
	}

	if !opts.passive {
		cp.pager.OnConnect(cp.controller.start).OnDisconnect(cp.controller.stop)
	}

	return cp, nil
}

// LoadNextPage appends the next page to Items. The first call drains the remote catalog.
func (p *CatalogPager) LoadNextPage(ctx context.Context) (Page[*MediaObject], error) {
	return p.pager.LoadNextPage(ctx)
}

// Items returns the objects shown so far.
func (p *CatalogPager) Items() []*MediaObject {
	return p.pager.Items()
}

func (p *CatalogPager) AtEnd() bool {
	return p.pager.AtEnd()
}

func (p *CatalogPager) Total() int {
	return p.pager.Total()
}

func (p *CatalogPager) PageSize() int {
	return p.pager.PageSize()
}

// Connect starts following sort preference changes and enriching new items. A passive
// pager connects without subscribing to anything.
func (p *CatalogPager) Connect(ctx context.Context) {
	p.pager.Connect(ctx)
}

// Disconnect stops both subscriptions.
func (p *CatalogPager) Disconnect() {
	p.pager.Disconnect()
}

func (p *CatalogPager) Connected() bool {
	return p.pager.Connected()
}

// ApplySort re-sorts the buffer the same way a preference change does. It reports false
// when spec is nil or nothing is buffered yet.
func (p *CatalogPager) ApplySort(ctx context.Context, spec *SortSpec) (bool, error) {
	if spec != nil {
		if err := spec.validate(); err != nil {
			return false, fmt.Errorf("cannot apply sort: %w", err)
		}
	}

	return p.controller.apply(ctx, spec), nil
}

// Invalidate drops the buffer and the visible list. The next LoadNextPage drains the
// remote catalog again.
func (p *CatalogPager) Invalidate() {
	p.pager.ReplaceItemsWith(func([]*MediaObject, bool) ([]*MediaObject, bool) {
		p.local.Invalidate()
		return nil, false
	})

	p.annotationsMu.Lock()
	defer p.annotationsMu.Unlock()

	clear(p.annotations)
	p.annotationGen++
}

// Annotation returns the enrichment result for obj, if one arrived.
func (p *CatalogPager) Annotation(obj *MediaObject) (UserAnnotation, bool) {
	key := ItemKeyValue(obj, p.itemKey)
	if key == "" {
		return UserAnnotation{}, false
	}

	p.annotationsMu.RLock()
	defer p.annotationsMu.RUnlock()

	annotation, ok := p.annotations[key]

	return annotation, ok
}

// annotationSink returns the function storing the result of an enrichment call that
// starts now. Results arriving after an Invalidate are discarded.
func (p *CatalogPager) annotationSink() func(map[string]UserAnnotation) {
	p.annotationsMu.RLock()
	gen := p.annotationGen
	p.annotationsMu.RUnlock()

	return func(annotations map[string]UserAnnotation) {
		p.annotationsMu.Lock()
		defer p.annotationsMu.Unlock()

		if gen != p.annotationGen {
			return
		}

		for key, annotation := range annotations {
			p.annotations[key] = annotation
		}
	}
}

// Cursor returns the number of local pages served since the last load or re-sort.
func (p *CatalogPager) Cursor() int {
	return p.local.Cursor()
}

// SortSpec returns the sort currently applied to the buffer, nil for remote order.
func (p *CatalogPager) SortSpec() *SortSpec {
	return p.local.SortSpec()
}

// Buffer returns every drained object in the current order.
func (p *CatalogPager) Buffer() []*MediaObject {
	return p.local.Buffer()
}
