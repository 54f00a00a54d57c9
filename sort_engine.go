package mediapager

import (
	"slices"

	"github.com/samber/lo/mutable"
	"golang.org/x/text/language"
)

// SortKeyAddedAt is the key under which remote sources deliver artists newest first.
const SortKeyAddedAt = "added_at"

// SortEngine reorders a buffer of media objects in place.
type SortEngine struct {
	comparator *Comparator
}

func NewSortEngine(comparator *Comparator) *SortEngine {
	if comparator == nil {
		comparator = NewComparator(language.Und)
	}

	return &SortEngine{comparator: comparator}
}

// Apply sorts buffer according to spec. A nil spec keeps the current order.
//
// Artist rows do not carry a reliable added timestamp, so when the buffer holds artists
// and the key is added_at the remote order (newest first) is taken as given: ascending
// reverses it and descending keeps it.
func (e *SortEngine) Apply(buffer []*MediaObject, spec *SortSpec) {
	if spec == nil || len(buffer) == 0 {
		return
	}

	if spec.SortBy == SortKeyAddedAt && buffer[0].Variant == VariantSortableArtist {
		if spec.SortOrder == Ascending {
			mutable.Reverse(buffer)
		}
		return
	}

	slices.SortStableFunc(buffer, func(a, b *MediaObject) int {
		ret := e.comparator.Compare(ExtractSortValue(a, spec.SortBy), ExtractSortValue(b, spec.SortBy), spec.SortOrder)
		if ret != 0 || !a.IsSortableArtist() || !b.IsSortableArtist() {
			return ret
		}

		return e.comparator.Compare(a.SecondaryValue, b.SecondaryValue, spec.SortOrder)
	})
}
