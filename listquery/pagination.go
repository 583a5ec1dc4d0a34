package listquery

// DefaultPageSize is the page size when none is provided.
const DefaultPageSize = 20

// MaxPageSize is the default maximum page size.
const MaxPageSize = 100

// TaskPageSize is the page size task lists use.
const TaskPageSize = 5

// Pagination describes paging taken from user input.
type Pagination struct {
	Page    int
	Size    int
	MaxSize int
}

// Normalize applies defaults and bounds.
func (p Pagination) Normalize() Pagination {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	maxSize := p.MaxSize
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Pagination{Page: page, Size: size, MaxSize: maxSize}
}

// Offset returns the index of the first item of the page.
func (p Pagination) Offset() int {
	normalized := p.Normalize()
	return (normalized.Page - 1) * normalized.Size
}

// TotalPages returns how many pages of size hold count items; never less
// than one.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}
