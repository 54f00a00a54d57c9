package mediapager

import "context"

// UserAnnotation carries user-specific data about an object, fetched once the object
// became visible.
type UserAnnotation struct {
	InLibrary bool `json:"inLibrary"`
	Favorite  bool `json:"favorite"`
	PlayCount int  `json:"playCount"`
}

// Enricher looks up annotations for objects identified by their item key values. Keys
// missing from the result have no annotation.
type Enricher interface {
	Annotate(ctx context.Context, keys []string) (map[string]UserAnnotation, error)
}

// EnricherFunc adapts a function to Enricher.
type EnricherFunc func(ctx context.Context, keys []string) (map[string]UserAnnotation, error)

// Annotate - implements Enricher.
func (f EnricherFunc) Annotate(ctx context.Context, keys []string) (map[string]UserAnnotation, error) {
	return f(ctx, keys)
}

var _ Enricher = EnricherFunc(nil)
