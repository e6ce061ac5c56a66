package notion

import "context"

// Querier is the part of the client the iterator needs.
type Querier interface {
	QueryDatabase(ctx context.Context, databaseID string, query *QueryRequest) (*QueryResponse, error)
}

var _ Querier = (*Client)(nil)

// PageIterator walks a database query page by page. Consumers never see
// the pagination cursor; they call Next until HasMore reports false.
type PageIterator struct {
	store      Querier
	databaseID string
	filter     map[string]any
	sorts      []Sort
	pageSize   int
	cursor     string
	done       bool
}

// NewPageIterator creates an iterator over all pages matching the filter.
func NewPageIterator(store Querier, databaseID string, filter map[string]any, sorts []Sort) *PageIterator {
	return &PageIterator{
		store:      store,
		databaseID: databaseID,
		filter:     filter,
		sorts:      sorts,
		pageSize:   DefaultPageSize,
	}
}

// HasMore reports whether another call to Next can yield results.
func (it *PageIterator) HasMore() bool {
	return !it.done
}

// Next fetches the next batch of pages. A failed fetch exhausts the
// iterator; callers must discard any partial results they accumulated.
func (it *PageIterator) Next(ctx context.Context) ([]Page, error) {
	if it.done {
		return nil, nil
	}

	query := &QueryRequest{
		Filter:   it.filter,
		Sorts:    it.sorts,
		PageSize: it.pageSize,
	}
	if it.cursor != "" {
		query.StartCursor = it.cursor
	}

	resp, err := it.store.QueryDatabase(ctx, it.databaseID, query)
	if err != nil {
		it.done = true
		return nil, err
	}

	if resp.HasMore && resp.NextCursor != nil {
		it.cursor = *resp.NextCursor
	} else {
		it.done = true
	}
	return resp.Results, nil
}

// Reset rewinds the iterator to the first page.
func (it *PageIterator) Reset() {
	it.cursor = ""
	it.done = false
}
