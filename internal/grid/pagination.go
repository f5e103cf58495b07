package grid

// DefaultMaxButtons is the number of page buttons shown when the caller does
// not choose one.
const DefaultMaxButtons = 5

// PageCount returns ceil(totalItems / rowsPerPage).
func PageCount(totalItems, rowsPerPage int) int {
	if totalItems <= 0 || rowsPerPage <= 0 {
		return 0
	}
	return (totalItems + rowsPerPage - 1) / rowsPerPage
}

// ClampPage clamps page into [1, max(pageCount, 1)].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

// Window returns the contiguous page numbers to render as buttons. Its length
// is min(maxButtons, pageCount) and it contains currentPage whenever
// currentPage is a valid page. A zero pageCount yields an empty window.
func Window(currentPage, pageCount, maxButtons int) []int {
	if maxButtons <= 0 {
		maxButtons = DefaultMaxButtons
	}
	if pageCount <= 0 {
		return []int{}
	}
	if pageCount <= maxButtons {
		return pageRange(1, pageCount)
	}

	before := maxButtons / 2
	after := (maxButtons+1)/2 - 1

	switch {
	case currentPage <= before:
		return pageRange(1, maxButtons)
	case currentPage+after >= pageCount:
		return pageRange(pageCount-maxButtons+1, pageCount)
	default:
		return pageRange(currentPage-before, currentPage+after)
	}
}

func pageRange(from, to int) []int {
	pages := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Pagination is the grid's paging state.
type Pagination struct {
	CurrentPage int
	RowsPerPage int
	TotalItems  int
}

// PageCount returns the number of pages for the current totals.
func (p Pagination) PageCount() int {
	return PageCount(p.TotalItems, p.RowsPerPage)
}

// Clamp returns p with CurrentPage clamped to a valid page.
func (p Pagination) Clamp() Pagination {
	p.CurrentPage = ClampPage(p.CurrentPage, p.PageCount())
	return p
}

// FirstItem is the 1-based index of the first item on the current page, or 0
// when there are no items.
func (p Pagination) FirstItem() int {
	if p.TotalItems == 0 || p.RowsPerPage <= 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.RowsPerPage + 1
}

// LastItem is the 1-based index of the last item on the current page.
func (p Pagination) LastItem() int {
	last := p.CurrentPage * p.RowsPerPage
	if last > p.TotalItems {
		last = p.TotalItems
	}
	return last
}

// HasPrev and HasNext report whether a neighbouring page exists.
func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

func (p Pagination) HasNext() bool { return p.CurrentPage < p.PageCount() }

// Window returns the page buttons for the current page.
func (p Pagination) Window(maxButtons int) []int {
	return Window(p.CurrentPage, p.PageCount(), maxButtons)
}
