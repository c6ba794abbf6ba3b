// Package pagination splits an ordered result set into numbered pages.
package pagination

import (
	"strconv"
	"strings"
)

// Paginator describes how a result set of Count items is split.
// Orphans lets the last page absorb up to that many trailing items
// instead of producing a nearly empty page.
type Paginator struct {
	Count   int64
	PerPage int
	Orphans int
}

// Page is one resolved page of a Paginator.
type Page struct {
	Number   int
	NumPages int
	Count    int64
	Offset   int
	Limit    int
}

// NumPages returns the number of pages; an empty set still has one page.
func (p Paginator) NumPages() int {
	if p.PerPage <= 0 {
		return 1
	}
	hits := p.Count - int64(p.Orphans)
	if hits < 1 {
		hits = 1
	}
	return int((hits + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// GetPage resolves a raw page number. Non-numeric input yields the first
// page; numbers out of range yield the last page.
func (p Paginator) GetPage(raw string) Page {
	num := p.NumPages()
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		n = 1
	case n < 1 || n > num:
		n = num
	}
	return p.page(n, num)
}

func (p Paginator) page(n, num int) Page {
	perPage := p.PerPage
	if perPage <= 0 {
		return Page{Number: 1, NumPages: 1, Count: p.Count, Limit: int(p.Count)}
	}
	bottom := int64((n - 1) * perPage)
	top := bottom + int64(perPage)
	if top+int64(p.Orphans) >= p.Count {
		top = p.Count
	}
	limit := top - bottom
	if limit < 0 {
		limit = 0
	}
	return Page{
		Number:   n,
		NumPages: num,
		Count:    p.Count,
		Offset:   int(bottom),
		Limit:    int(limit),
	}
}

// HasNext reports whether a later page exists.
func (pg Page) HasNext() bool { return pg.Number < pg.NumPages }

// HasPrevious reports whether an earlier page exists.
func (pg Page) HasPrevious() bool { return pg.Number > 1 }

// HasOtherPages reports whether the set spans more than one page.
func (pg Page) HasOtherPages() bool { return pg.HasNext() || pg.HasPrevious() }
