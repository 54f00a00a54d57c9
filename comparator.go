package mediapager

import (
	"cmp"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator compares sort values the way a media listing expects them ordered: strings
// case-insensitively with embedded numbers compared by value ("track9" < "track10").
type Comparator struct {
	// collate.Collator keeps internal buffers and is not safe for concurrent use.
	mu       sync.Mutex
	collator *collate.Collator
}

func NewComparator(tag language.Tag) *Comparator {
	return &Comparator{
		collator: collate.New(tag, collate.IgnoreCase, collate.Numeric),
	}
}

// Compare returns a negative number, zero or a positive number when a sorts before, with
// or after b, scaled by order.
//
// nil ranks below every non-nil value before the order is applied, so descending
// listings put nil values last.
func (c *Comparator) Compare(a, b any, order SortOrder) int {
	return c.compare(a, b) * int(order)
}

func (c *Comparator) compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return c.compareStrings(as, bs)
		}
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	return c.compareStrings(fmt.Sprint(a), fmt.Sprint(b))
}

func (c *Comparator) compareStrings(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.collator.CompareString(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
