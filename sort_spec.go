package mediapager

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"
)

// SortOrder is the multiplier applied to comparison results: +1 ascending, -1 descending.
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

func (o SortOrder) Valid() bool {
	return o == Ascending || o == Descending
}

// String - implements fmt.Stringer.
func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return fmt.Sprintf("SortOrder(%d)", int(o))
	}
}

// Reverse returns the opposite direction.
func (o SortOrder) Reverse() SortOrder {
	return lo.Ternary(o == Descending, Ascending, Descending)
}

// ParseSortOrder accepts "asc"/"desc" in any case as well as "+1"/"1"/"-1".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "1", "+1":
		return Ascending, nil
	case "desc", "-1":
		return Descending, nil
	default:
		return 0, fmt.Errorf("invalid sort order '%s'", s)
	}
}

// SortSpec describes how the buffer of a pager is ordered. A nil *SortSpec keeps the
// order in which the remote source returned the items.
type SortSpec struct {
	SortBy    string    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// String renders the spec in the "key:order" form accepted by ParseSortSpec.
func (s *SortSpec) String() string {
	if s == nil {
		return ""
	}

	return fmt.Sprintf("%s:%s", s.SortBy, s.SortOrder)
}

var _availableSortKeySymbols = append([]rune("_"), lo.AlphanumericCharset...)

func (s *SortSpec) validate() error {
	if s == nil {
		return nil
	}

	if s.SortBy == "" {
		return fmt.Errorf("empty sort key")
	}

	if !lo.Every(_availableSortKeySymbols, []rune(s.SortBy)) {
		return fmt.Errorf("sort key contains forbidden symbols '%s'", s.SortBy)
	}

	if !s.SortOrder.Valid() {
		return fmt.Errorf("invalid sort order '%d'", s.SortOrder)
	}

	return nil
}

// ParseSortSpec builds a SortSpec from an expression in the form "key" or "key:asc|desc".
// A bare key sorts ascending.
func ParseSortSpec(expr string) (*SortSpec, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty sort expression")
	}

	parts := strings.Split(expr, ":")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid sort expression format '%s'", expr)
	}

	spec := &SortSpec{
		SortBy:    strings.TrimSpace(parts[0]),
		SortOrder: Ascending,
	}

	if len(parts) == 2 {
		order, err := ParseSortOrder(parts[1])
		if err != nil {
			return nil, err
		}
		spec.SortOrder = order
	}

	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid sort expression: %w", err)
	}

	return spec, nil
}

func closestKey(input string, dataSet []string) string {
	minDist := math.MaxInt
	closest := ""

	for _, key := range dataSet {
		dist := levenshtein.ComputeDistance(key, input)
		if dist < minDist {
			minDist = dist
			closest = key
		}
	}

	return closest
}
