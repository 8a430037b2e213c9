package batch

import (
	"context"

	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/events"
	"github.com/Guliveer/twitch-helix-go/internal/metrics"
)

// Page is one page of a cursor-paginated listing. An empty Cursor marks the
// last page.
type Page[E any] struct {
	Items  []E
	Cursor string
}

// PageFetcher reads the page of sourceID's listing that starts at cursor.
// The first page is requested with an empty cursor. A nil page means the
// listing is empty.
type PageFetcher[E any] func(ctx context.Context, sourceID, cursor string) (*Page[E], error)

// Scanner walks paginated listings looking for a single edge.
type Scanner[E any] struct {
	// MaxPages bounds the number of pages read per scan.
	MaxPages int

	Events  *events.Emitter
	Metrics *metrics.Collectors
}

// ScanUntil reads pages of sourceID's listing until match accepts an item,
// which is returned. It returns nil without an error when the listing ends,
// when the upstream repeats a cursor, or when MaxPages pages were read.
func (s *Scanner[E]) ScanUntil(ctx context.Context, sourceID string, match func(E) bool, fetch PageFetcher[E]) (*E, error) {
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = constants.DefaultMaxScanPages
	}

	pages := 0
	defer func() { s.Metrics.ObserveScan(pages) }()

	seen := make(map[string]bool)
	cursor := ""

	for pages < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, sourceID, cursor)
		pages++
		if err != nil {
			return nil, err
		}
		if page == nil {
			return nil, nil
		}

		for i := range page.Items {
			if match(page.Items[i]) {
				item := page.Items[i]
				return &item, nil
			}
		}

		if page.Cursor == "" {
			return nil, nil
		}
		if seen[page.Cursor] {
			s.warn("Paginated scan stopped on a repeated cursor", "pages", pages)
			return nil, nil
		}
		seen[page.Cursor] = true
		cursor = page.Cursor
	}

	s.warn("Paginated scan stopped at page limit", "pages", pages, "max_pages", maxPages)
	return nil, nil
}

func (s *Scanner[E]) warn(msg string, args ...any) {
	if s.Events != nil {
		s.Events.Warn(msg, args...)
	}
}
