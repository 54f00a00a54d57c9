package mediapager

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func titles(buffer []*MediaObject) []string {
	return lo.Map(buffer, func(item *MediaObject, _ int) string {
		return item.Title
	})
}

func mediaWithTitles(list ...string) []*MediaObject {
	return lo.Map(list, func(title string, _ int) *MediaObject {
		return &MediaObject{Variant: VariantMedia, Type: "track", ID: title, Title: title}
	})
}

func artistsWithTitles(list ...string) []*MediaObject {
	return lo.Map(list, func(title string, _ int) *MediaObject {
		return &MediaObject{Variant: VariantSortableArtist, Type: RawTypeArtist, ID: title, Title: title}
	})
}

func Test_SortEngine_Apply_Title(t *testing.T) {
	tests := []struct {
		name string
		spec *SortSpec
		want []string
	}{
		{"ascending", &SortSpec{SortBy: "title", SortOrder: Ascending}, []string{"a", "b", "c"}},
		{"descending", &SortSpec{SortBy: "title", SortOrder: Descending}, []string{"c", "b", "a"}},
		{"nil spec keeps remote order", nil, []string{"b", "a", "c"}},
	}

	engine := NewSortEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := mediaWithTitles("b", "a", "c")
			engine.Apply(buffer, tt.spec)
			assert.Equal(t, tt.want, titles(buffer))
		})
	}
}

func Test_SortEngine_Apply_NumericAwareTitles(t *testing.T) {
	buffer := mediaWithTitles("track10", "Track2", "track9")
	NewSortEngine(nil).Apply(buffer, &SortSpec{SortBy: "title", SortOrder: Ascending})

	assert.Equal(t, []string{"Track2", "track9", "track10"}, titles(buffer))
}

func Test_SortEngine_Apply_ArtistAddedAt(t *testing.T) {
	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{"ascending reverses remote order", Ascending, []string{"old", "mid", "new"}},
		{"descending keeps remote order", Descending, []string{"new", "mid", "old"}},
	}

	engine := NewSortEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := artistsWithTitles("new", "mid", "old")
			// timestamps contradict the remote order; they must not be consulted
			for i, obj := range buffer {
				added := time.Unix(int64(i), 0)
				obj.AddedAt = &added
			}

			engine.Apply(buffer, &SortSpec{SortBy: SortKeyAddedAt, SortOrder: tt.order})
			assert.Equal(t, tt.want, titles(buffer))
		})
	}
}

func Test_SortEngine_Apply_AddedAtOnMediaSortsByTimestamp(t *testing.T) {
	buffer := mediaWithTitles("x", "y", "z")
	for i, obj := range buffer {
		added := time.Unix(int64(100-i), 0)
		obj.AddedAt = &added
	}

	NewSortEngine(nil).Apply(buffer, &SortSpec{SortBy: SortKeyAddedAt, SortOrder: Ascending})
	assert.Equal(t, []string{"z", "y", "x"}, titles(buffer))
}

// Variant decides, not the fields: a media row typed "artist" sorts by timestamp.
func Test_SortEngine_Apply_DiscriminatorIsVariant(t *testing.T) {
	buffer := mediaWithTitles("x", "y")
	for i, obj := range buffer {
		obj.Type = RawTypeArtist
		added := time.Unix(int64(i), 0)
		obj.AddedAt = &added
	}

	NewSortEngine(nil).Apply(buffer, &SortSpec{SortBy: SortKeyAddedAt, SortOrder: Ascending})
	assert.Equal(t, []string{"x", "y"}, titles(buffer))
}

func Test_SortEngine_Apply_ArtistSecondaryTieBreak(t *testing.T) {
	buffer := artistsWithTitles("Beatles", "Beatles", "Abba")
	buffer[0].SecondaryValue = "Beatles, The (2)"
	buffer[1].SecondaryValue = "Beatles, The (1)"

	NewSortEngine(nil).Apply(buffer, &SortSpec{SortBy: "title", SortOrder: Ascending})

	assert.Equal(t, []string{"Abba", "Beatles", "Beatles"}, titles(buffer))
	assert.Equal(t, "Beatles, The (1)", buffer[1].SecondaryValue)
}

func Test_SortEngine_Apply_NullsFirstAscending(t *testing.T) {
	buffer := mediaWithTitles("a", "b", "c")
	buffer[0].Attributes = map[string]any{"label": "Zeta"}
	buffer[1].Attributes = map[string]any{"label": nil}
	buffer[2].Attributes = map[string]any{"label": "Alpha"}

	engine := NewSortEngine(nil)

	engine.Apply(buffer, &SortSpec{SortBy: "label", SortOrder: Ascending})
	assert.Equal(t, []string{"b", "c", "a"}, titles(buffer))

	engine.Apply(buffer, &SortSpec{SortBy: "label", SortOrder: Descending})
	assert.Equal(t, []string{"a", "c", "b"}, titles(buffer))
}
