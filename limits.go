package mediapager

const (
	// MaxBufferedItems caps the number of objects a pager materializes from the remote source.
	MaxBufferedItems = 2000
	// RemoteFetchSize is the limit passed to every remote page request.
	RemoteFetchSize = 50

	DefaultPageSize = 50
	MaxPageSize     = 500
)

// IsNormalizedPageSize reports the page size to use for the requested one and whether the
// requested value was already valid.
func IsNormalizedPageSize(pageSize int, maxPageSize int) (int, bool) {
	if pageSize <= 0 {
		return DefaultPageSize, false
	} else if pageSize > maxPageSize {
		return maxPageSize, false
	}

	return pageSize, true
}

func NormalizePageSizeMax(pageSize int, maxPageSize int) int {
	ret, _ := IsNormalizedPageSize(pageSize, maxPageSize)
	return ret
}

func NormalizePageSize(pageSize int) int {
	return NormalizePageSizeMax(pageSize, MaxPageSize)
}

// normalizeBufferCap keeps configured buffer caps within (0, MaxBufferedItems].
func normalizeBufferCap(limit int) int {
	if limit <= 0 || limit > MaxBufferedItems {
		return MaxBufferedItems
	}

	return limit
}
