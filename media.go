package mediapager

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// Variant is the discriminant of MediaObject. The sort engine relies on it, never on
// which fields happen to be set.
type Variant string

const (
	VariantMedia          Variant = "media"
	VariantSortableArtist Variant = "sortable_artist"
)

func (v Variant) Valid() bool {
	return v == VariantMedia || v == VariantSortableArtist
}

// RawTypeArtist is the type tag a catalog source uses for artist rows.
const RawTypeArtist = "artist"

// RawItem is one entry of a remote catalog page as delivered by the source.
type RawItem struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RemotePage is a single response of the remote catalog. Items may contain nil entries.
// An empty Next means the source has no continuation.
type RemotePage struct {
	Items []*RawItem `json:"items"`
	Next  string     `json:"next"`
}

// MediaObject is the domain representation of a catalog row.
type MediaObject struct {
	Variant     Variant
	Type        string
	ID          string
	Title       string
	Name        string
	Artist      string
	AlbumArtist string
	AddedAt     *time.Time
	InLibrary   bool

	// SecondaryKey and SecondaryValue are only set on VariantSortableArtist and break
	// ties between artists that compare equal on the primary sort key.
	SecondaryKey   string
	SecondaryValue any

	// Attributes holds every remote field without a dedicated struct field.
	Attributes map[string]any
}

func (m *MediaObject) IsSortableArtist() bool {
	return m != nil && m.Variant == VariantSortableArtist
}

// Item keys that can identify objects of a pager.
var _itemKeys = []string{"id", "type", "title", "name", "artist", "album_artist", "added_at"}

// ValidateItemKey checks that key names a field of MediaObject usable as an item key.
func ValidateItemKey(key string) error {
	if slices.Contains(_itemKeys, key) {
		return nil
	}

	return fmt.Errorf("unknown item key '%s'. closest: '%s'", key, closestKey(key, _itemKeys))
}

// ItemKeyValue returns the value of the item key field of m as a string.
func ItemKeyValue(m *MediaObject, key string) string {
	if m == nil {
		return ""
	}

	switch key {
	case "id":
		return m.ID
	case "type":
		return m.Type
	case "title":
		return m.Title
	case "name":
		return m.Name
	case "artist":
		return m.Artist
	case "album_artist":
		return m.AlbumArtist
	case "added_at":
		if m.AddedAt == nil {
			return ""
		}
		return m.AddedAt.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// ObjectMapper converts raw catalog items into domain objects.
type ObjectMapper interface {
	CreateMediaObject(raw *RawItem, inLibrary bool) *MediaObject
	CreateSortableMediaArtist(raw *RawItem, inLibrary bool, secondaryKey string) *MediaObject
}

// DefaultMapper maps the common catalog fields (title, name, artist, album_artist,
// added_at) onto MediaObject and keeps the rest as attributes.
type DefaultMapper struct{}

var _mappedFields = []string{"title", "name", "artist", "album_artist", "added_at"}

// CreateMediaObject - implements ObjectMapper.
func (DefaultMapper) CreateMediaObject(raw *RawItem, inLibrary bool) *MediaObject {
	obj := &MediaObject{
		Variant:     VariantMedia,
		Type:        raw.Type,
		ID:          raw.ID,
		Title:       stringField(raw.Fields, "title"),
		Name:        stringField(raw.Fields, "name"),
		Artist:      stringField(raw.Fields, "artist"),
		AlbumArtist: stringField(raw.Fields, "album_artist"),
		AddedAt:     timeField(raw.Fields, "added_at"),
		InLibrary:   inLibrary,
		Attributes:  lo.OmitByKeys(raw.Fields, _mappedFields),
	}

	return obj
}

// CreateSortableMediaArtist - implements ObjectMapper.
func (m DefaultMapper) CreateSortableMediaArtist(raw *RawItem, inLibrary bool, secondaryKey string) *MediaObject {
	obj := m.CreateMediaObject(raw, inLibrary)
	obj.Variant = VariantSortableArtist
	obj.SecondaryKey = secondaryKey
	obj.SecondaryValue = raw.Fields[secondaryKey]

	return obj
}

var _ ObjectMapper = DefaultMapper{}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// timeField accepts time.Time, RFC 3339 strings and unix seconds.
func timeField(fields map[string]any, key string) *time.Time {
	var ret time.Time

	switch v := fields[key].(type) {
	case time.Time:
		ret = v
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			seconds, convErr := strconv.ParseInt(v, 10, 64)
			if convErr != nil {
				return nil
			}
			parsed = time.Unix(seconds, 0)
		}
		ret = parsed
	case int:
		ret = time.Unix(int64(v), 0)
	case int64:
		ret = time.Unix(v, 0)
	case float64:
		ret = time.Unix(int64(v), 0)
	default:
		return nil
	}

	return &ret
}
