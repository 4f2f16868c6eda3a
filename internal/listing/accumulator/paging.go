package accumulator

import (
	"jobboard-listing/internal/models"
)

// DefaultScrollMargin is the near-bottom threshold in pixels.
const DefaultScrollMargin = 100

// ScrollPosition is the scroll state of the listing container.
type ScrollPosition struct {
	ScrollTop    int
	ClientHeight int
	ScrollHeight int
}

// NearBottom reports whether the viewport is within margin of the end.
func NearBottom(pos ScrollPosition, margin int) bool {
	if margin < 0 {
		margin = DefaultScrollMargin
	}
	return pos.ScrollTop+pos.ClientHeight >= pos.ScrollHeight-margin
}

// Ellipsis marks a gap in PageNumbers.
const Ellipsis = 0

// PageNumbers returns the page buttons to show around current, at most
// maxVisible numbers plus Ellipsis markers, always including the first and
// last page.
func PageNumbers(current, last, maxVisible int) []int {
	if last < 1 {
		return nil
	}
	if maxVisible < 3 {
		maxVisible = 3
	}
	if last <= maxVisible {
		return seq(1, last)
	}

	half := maxVisible / 2
	switch {
	case current <= half+1:
		return append(seq(1, maxVisible-1), Ellipsis, last)
	case current >= last-half:
		return append([]int{1, Ellipsis}, seq(last-maxVisible+2, last)...)
	default:
		// the first and last page take two of the maxVisible numbers
		middle := maxVisible - 2
		from := current - (middle-1)/2
		out := append([]int{1, Ellipsis}, seq(from, from+middle-1)...)
		return append(out, Ellipsis, last)
	}
}

func seq(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Range returns the 1-based positions of the shown items ("showing 11-20"),
// or 0, 0 when nothing is shown.
func Range(meta models.PaginationMeta, perPage, shown int) (from, to int) {
	if shown <= 0 || perPage <= 0 {
		return 0, 0
	}
	from = (meta.CurrentPage-1)*perPage + 1
	return from, from + shown - 1
}

// LocalPage returns one page of a collection the backend sent whole, with the
// matching meta. page is clamped into range.
func LocalPage(items []models.ListingItem, page, perPage int) ([]models.ListingItem, models.PaginationMeta) {
	if perPage <= 0 {
		perPage = len(items)
		if perPage == 0 {
			perPage = 1
		}
	}
	last := (len(items) + perPage - 1) / perPage
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	meta := models.PaginationMeta{
		CurrentPage: page,
		LastPage:    last,
		TotalCount:  len(items),
		PerPage:     perPage,
	}.Normalize()
	return copyItems(items[start:end]), meta
}
