package mediapager

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RemoteFetchFunc requests limit items of the remote catalog starting at offset. cursor is
// the continuation token of the previous page, empty for the first request.
type RemoteFetchFunc func(ctx context.Context, offset, limit int, cursor string) (RemotePage, error)

// bulkFetcher drains a remote catalog into memory.
type bulkFetcher struct {
	fetch        RemoteFetchFunc
	retrier      Retrier
	mapper       ObjectMapper
	fetchSize    int
	maxItems     int
	secondaryKey string
	inLibrary    bool
	source       string
	logger       zerolog.Logger
}

// drain requests remote pages one after another until the buffer is full, the source
// reports no continuation, a page comes back short, or a call fails after retries.
//
// Failures are not returned: the objects collected so far are the result.
func (f *bulkFetcher) drain(ctx context.Context) []*MediaObject {
	ctx, span := _tracer.Start(ctx, "mediapager.drain")
	defer span.End()

	label := sourceLabel(f.source)
	start := time.Now()

	buffer := make([]*MediaObject, 0, f.fetchSize)
	var cursor *FetchCursor

	for len(buffer) < f.maxItems {
		var page RemotePage
		err := f.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			page, callErr = f.fetch(ctx, cursor.GetOffset(), f.fetchSize, cursor.GetToken())
			return callErr
		})
		if err != nil {
			RemoteFetches.WithLabelValues(label, "error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "remote fetch failed")
			f.logger.Warn().
				Err(err).
				Stringer("cursor", cursor).
				Int("buffered", len(buffer)).
				Msg("remote fetch failed, keeping partial buffer")
			break
		}
		RemoteFetches.WithLabelValues(label, "ok").Inc()

		for _, raw := range lo.Compact(page.Items) {
			if len(buffer) >= f.maxItems {
				break
			}
			buffer = append(buffer, f.convert(raw))
		}

		// Short pages are judged on what the source sent, nil entries included.
		if IsLastRemotePage(page, f.fetchSize) {
			break
		}

		cursor = cursor.Advance(f.fetchSize, page.Next)
	}

	DrainDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	BufferedItems.WithLabelValues(label).Observe(float64(len(buffer)))
	span.SetAttributes(
		attribute.String("mediapager.source", label),
		attribute.Int("mediapager.items", len(buffer)),
	)

	f.logger.Info().
		Int("items", len(buffer)).
		Dur("took", time.Since(start)).
		Msg("remote catalog drained")

	return buffer
}

func (f *bulkFetcher) convert(raw *RawItem) *MediaObject {
	if f.secondaryKey != "" && raw.Type == RawTypeArtist {
		return f.mapper.CreateSortableMediaArtist(raw, f.inLibrary, f.secondaryKey)
	}

	return f.mapper.CreateMediaObject(raw, f.inLibrary)
}
