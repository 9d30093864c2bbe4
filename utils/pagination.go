package utils

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ClampPage normalizes optional offset/limit query values into a usable
// window. Missing or nonsensical values fall back to the defaults and the
// limit never exceeds maxPageSize.
func ClampPage(offset, limit *int) (int, int) {
	off := 0
	lim := defaultPageSize

	if offset != nil && *offset > 0 {
		off = *offset
	}
	if limit != nil && *limit > 0 {
		lim = *limit
		if lim > maxPageSize {
			lim = maxPageSize
		}
	}
	return off, lim
}
