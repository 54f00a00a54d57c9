package mediapager

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// resortController keeps a connected catalog pager in step with the outside world: it
// re-sorts the buffer when the sort preference of the source changes and has newly
// visible objects annotated.
type resortController struct {
	pager    *SequentialPager[*MediaObject]
	local    *LocalPaginator
	prefs    PreferenceStore
	enricher Enricher
	sourceID string
	itemKey  string
	annotate func() func(map[string]UserAnnotation)
	logger   zerolog.Logger

	mu          sync.Mutex
	running     bool
	unobserve   func()
	unsubscribe func()
	done        chan struct{}
}

// start subscribes to the additions and preference streams. ctx ends with the
// connection.
func (c *resortController) start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true

	if c.enricher != nil {
		c.unobserve = c.pager.ObserveAdditions(func(items []*MediaObject) {
			c.enrich(ctx, items)
		})
	}

	if c.prefs != nil && c.sourceID != "" {
		changes, unsubscribe := c.prefs.ObservePreferenceChanges(c.sourceID)
		done := make(chan struct{})

		c.unsubscribe = unsubscribe
		c.done = done

		go func() {
			defer close(done)

			for {
				select {
				case <-ctx.Done():
					return
				case spec, ok := <-changes:
					if !ok {
						return
					}
					c.apply(ctx, spec)
				}
			}
		}()
	}

	c.logger.Debug().
		Bool("enrichment", c.unobserve != nil).
		Bool("preferences", c.done != nil).
		Msg("subscriptions started")
}

// stop ends both subscriptions and waits until no preference change is being applied.
func (c *resortController) stop() {
	c.mu.Lock()
	unobserve, unsubscribe, done := c.unobserve, c.unsubscribe, c.done
	c.running = false
	c.unobserve, c.unsubscribe, c.done = nil, nil, nil
	c.mu.Unlock()

	if unobserve != nil {
		unobserve()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if done != nil {
		<-done
	}

	c.logger.Debug().Msg("subscriptions stopped")
}

// apply re-sorts a non-empty buffer and hands the first page of the new order to the
// consumer in place of everything shown so far. It reports whether anything changed.
func (c *resortController) apply(ctx context.Context, spec *SortSpec) bool {
	if spec == nil {
		return false
	}

	_, span := _tracer.Start(ctx, "mediapager.resort")
	defer span.End()

	applied := false
	c.pager.ReplaceItemsWith(func(items []*MediaObject, atEnd bool) ([]*MediaObject, bool) {
		first, firstAtEnd, ok := c.local.Resort(spec, c.pager.PageSize())
		if !ok {
			return items, atEnd
		}

		applied = true
		return first, firstAtEnd
	})

	span.SetAttributes(
		attribute.String("mediapager.sort", spec.String()),
		attribute.Bool("mediapager.applied", applied),
	)

	if !applied {
		c.logger.Debug().Stringer("sort", spec).Msg("sort change ignored, buffer is empty")
		return false
	}

	Resorts.WithLabelValues(sourceLabel(c.sourceID), spec.SortBy).Inc()
	c.logger.Info().Stringer("sort", spec).Int("items", c.local.Len()).Msg("buffer re-sorted")

	return true
}

// enrich requests annotations for items without waiting for the answer. Failures are
// logged and otherwise ignored.
func (c *resortController) enrich(ctx context.Context, items []*MediaObject) {
	keys := lo.Uniq(lo.Compact(lo.Map(items, func(item *MediaObject, _ int) string {
		return ItemKeyValue(item, c.itemKey)
	})))
	if len(keys) == 0 {
		return
	}

	store := c.annotate()
	go func() {
		annotations, err := c.enricher.Annotate(ctx, keys)
		if err != nil {
			EnrichmentErrors.WithLabelValues(sourceLabel(c.sourceID)).Inc()
			c.logger.Warn().Err(err).Int("items", len(keys)).Msg("enrichment failed")
			return
		}

		store(annotations)
	}()
}
