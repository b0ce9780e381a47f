package utils

import (
	"strconv"
)

// PageSize is the fixed number of items on every list page.
const PageSize = 10

// Page is one slice of an ordered sequence plus the metadata the
// templates need to draw pager links.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
	HasPrev    bool
	HasNext    bool
}

func (p Page[T]) PrevNumber() int { return p.Number - 1 }
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// ParsePageNumber reads a raw `page` query value. Missing, non-numeric
// or non-positive input falls back to page 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate slices items into fixed-size pages and returns the requested
// one. A number past the end clamps to the last page; an empty sequence
// yields a single empty page. Pure function, no side effects.
func Paginate[T any](items []T, size, number int) Page[T] {
	if size < 1 {
		size = PageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	} else if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		TotalItems: total,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}
