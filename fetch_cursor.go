package mediapager

import (
	"fmt"
)

// FetchCursor is the position of a bulk fetch within the remote source: the offset of the
// next request plus the continuation token the source returned last.
//
// It lives only for the duration of one drain.
type FetchCursor struct {
	offset int
	token  string
}

func NewFetchCursor(offset int, token string) *FetchCursor {
	return &FetchCursor{
		offset: offset,
		token:  token,
	}
}

// String - implements fmt.Stringer.
func (c *FetchCursor) String() string {
	if c.IsEmpty() {
		return "start"
	}

	return fmt.Sprintf("offset=%d token=%q", c.offset, c.token)
}

// IsEmpty reports whether the cursor still points at the start of the source.
func (c *FetchCursor) IsEmpty() bool {
	return c == nil || (c.offset == 0 && c.token == "")
}

// GetOffset returns the numeric offset value.
func (c *FetchCursor) GetOffset() int {
	if c != nil {
		return c.offset
	}

	return 0
}

// GetToken returns the continuation token, empty for the first request.
func (c *FetchCursor) GetToken() string {
	if c != nil {
		return c.token
	}

	return ""
}

// Advance moves the cursor past a page of step items and remembers the continuation
// token of that page.
func (c *FetchCursor) Advance(step int, next string) *FetchCursor {
	if c == nil {
		c = new(FetchCursor)
	}

	c.offset += step
	c.token = next

	return c
}

var _ fmt.Stringer = (*FetchCursor)(nil)

// IsLastRemotePage reports whether page ends the remote source for a request of limit
// items: either it has no continuation or it came back short.
func IsLastRemotePage(page RemotePage, limit int) bool {
	return page.Next == "" || len(page.Items) < limit
}
