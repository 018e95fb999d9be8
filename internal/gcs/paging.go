package gcs

import (
	"context"
	"iter"
)

// PageFetcher retrieves one page of a marker-paged listing. An empty marker
// requests the fetcher's natural first page.
type PageFetcher func(ctx context.Context, marker string) (*Response, error)

// Pager walks a marker-paged listing. List envelopes carry a "marker" field
// while more pages exist (and may also carry "has_next_page"); the pager
// feeds each page's marker into the next fetch until the listing runs out.
type Pager struct {
	client *Client
	fetch  PageFetcher
}

// NewPager builds a pager over an arbitrary fetch function. Client methods
// like CollectionsPager cover the common listings.
func NewPager(fetch PageFetcher) *Pager {
	return &Pager{fetch: fetch}
}

// CollectionsPager pages through ListCollections with the given options.
// A Marker already set in opts becomes the starting point.
func (c *Client) CollectionsPager(opts *ListCollectionsOptions) *Pager {
	base := ListCollectionsOptions{}
	if opts != nil {
		base = *opts
	}
	return &Pager{
		client: c,
		fetch: func(ctx context.Context, marker string) (*Response, error) {
			pageOpts := base
			if marker != "" {
				pageOpts.Marker = marker
			}
			return c.ListCollections(ctx, &pageOpts)
		},
	}
}

// StorageGatewaysPager pages through ListStorageGateways with the given
// options. A Marker already set in opts becomes the starting point.
func (c *Client) StorageGatewaysPager(opts *ListStorageGatewaysOptions) *Pager {
	base := ListStorageGatewaysOptions{}
	if opts != nil {
		base = *opts
	}
	return &Pager{
		client: c,
		fetch: func(ctx context.Context, marker string) (*Response, error) {
			pageOpts := base
			if marker != "" {
				pageOpts.Marker = marker
			}
			return c.ListStorageGateways(ctx, &pageOpts)
		},
	}
}

// Pages yields one response per page until the listing is exhausted or a
// fetch fails. A fetch error ends the sequence after being yielded; the
// caller decides whether to resume from the last good marker.
func (p *Pager) Pages(ctx context.Context) iter.Seq2[*Response, error] {
	return func(yield func(*Response, error) bool) {
		marker := ""
		for {
			page, err := p.fetch(ctx, marker)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			marker = NextMarker(page)
			if marker == "" {
				return
			}
			if p.client != nil {
				p.client.log("info", "fetching next page", map[string]interface{}{
					"marker": marker,
				})
			}
		}
	}
}

// Items flattens Pages into the individual list documents, in page order.
func (p *Pager) Items(ctx context.Context) iter.Seq2[interface{}, error] {
	return func(yield func(interface{}, error) bool) {
		for page, err := range p.Pages(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			for item := range page.Items() {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// NextMarker reads the continuation marker out of a page envelope. An
// explicit "has_next_page": false ends the listing even if a marker is
// present. It returns "" on the last page.
func NextMarker(page *Response) string {
	if raw, ok := page.Get("has_next_page"); ok {
		if more, ok := raw.(bool); ok && !more {
			return ""
		}
	}
	raw, ok := page.Get("marker")
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}
