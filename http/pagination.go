package http

import "context"

// PageFetcher is a function that fetches one page of items. page is
// 1-based. Returns the items, whether there are more pages, and any error.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, hasMore bool, err error)

// Pager walks a paginated listing one page at a time. It stops with
// ErrPageLimit once limit pages have been fetched and the listing still
// has more; a limit of zero leaves only the provider's own pagination as
// the bound.
type Pager[T any] struct {
	fetch PageFetcher[T]
	limit int
	page  int // last fetched page
	done  bool
	err   error
}

// NewPager creates a pager that fetches at most limit pages.
func NewPager[T any](fetch PageFetcher[T], limit int) *Pager[T] {
	return &Pager[T]{
		fetch: fetch,
		limit: limit,
	}
}

// NextPage fetches the next page.
// Returns the items, true if a page was fetched, and any error.
// When the listing is exhausted, returns (nil, false, nil). An empty
// page is still reported with ok set.
func (p *Pager[T]) NextPage(ctx context.Context) ([]T, bool, error) {
	if p.err != nil {
		return nil, false, p.err
	}
	if p.done {
		return nil, false, nil
	}
	if p.limit > 0 && p.page >= p.limit {
		p.err = ErrPageLimit
		return nil, false, p.err
	}

	items, hasMore, err := p.fetch(ctx, p.page+1)
	if err != nil {
		p.err = err
		return nil, false, err
	}
	p.page++
	p.done = !hasMore

	return items, true, nil
}

// Find scans pages in order and returns the first item for which match
// reports true. Later pages are not fetched once a match is found.
func (p *Pager[T]) Find(ctx context.Context, match func(T) bool) (T, bool, error) {
	var zero T
	for {
		items, ok, err := p.NextPage(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			return zero, false, nil
		}
		for _, item := range items {
			if match(item) {
				return item, true, nil
			}
		}
	}
}

// Pages returns the number of pages fetched so far.
func (p *Pager[T]) Pages() int {
	return p.page
}
