package mediapager

import "sync"

var (
	_numericSortKeysMu sync.RWMutex
	_numericSortKeys   = map[string]struct{}{
		"duration":     {},
		"year":         {},
		"track_number": {},
		"disc_number":  {},
		"play_count":   {},
		"popularity":   {},
		"rating":       {},
	}
)

// RegisterNumericSortKey marks an attribute as numeric-like so that objects missing it
// sort as 0 instead of "".
func RegisterNumericSortKey(key string) {
	_numericSortKeysMu.Lock()
	defer _numericSortKeysMu.Unlock()

	_numericSortKeys[key] = struct{}{}
}

func isNumericSortKey(key string) bool {
	_numericSortKeysMu.RLock()
	defer _numericSortKeysMu.RUnlock()

	_, ok := _numericSortKeys[key]
	return ok
}

// ExtractSortValue returns the value of obj the sort key refers to. The result is nil,
// a string, a number or a time.Time.
//
// Fallbacks:
//   - title, name: Title, then Name, then "".
//   - artist: Artist, then AlbumArtist, then "".
//   - addedAt, added_at: AddedAt, then 0.
//   - anything else: the attribute of the same name (which may be nil), then 0 for
//     numeric-like keys and "" otherwise.
func ExtractSortValue(obj *MediaObject, key string) any {
	switch key {
	case "title", "name":
		return firstNonEmpty(obj.Title, obj.Name)
	case "artist":
		return firstNonEmpty(obj.Artist, obj.AlbumArtist)
	case "addedAt", "added_at":
		if obj.AddedAt == nil {
			return 0
		}
		return *obj.AddedAt
	}

	if v, ok := obj.Attributes[key]; ok {
		return v
	}

	if isNumericSortKey(key) {
		return 0
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
