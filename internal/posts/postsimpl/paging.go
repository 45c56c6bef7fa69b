package postsimpl

import (
	"context"

	"github.com/orgball2608/fb-post-manager/internal/domain"
)

// ResolvePaging works out which neighbours of page `current` hold posts.
// A cursor URL alone is not enough: the API hands out cursors to empty trailing pages,
// so each existing cursor is probed once.
func (p *PostsImpl) ResolvePaging(ctx context.Context, paging domain.Paging, current int) (domain.PageNav, error) {
	nav := domain.PageNav{
		Current:  current,
		Next:     current + 1,
		Previous: current - 1,
	}

	if paging.HasNextURL() {
		next, err := p.Graph.Fetch(ctx, paging.Next)
		if err != nil {
			return domain.PageNav{}, err
		}
		nav.HasNext = !next.Empty()
	}

	if nav.Previous >= 0 && paging.HasPreviousURL() {
		prev, err := p.Graph.Fetch(ctx, paging.Previous)
		if err != nil {
			return domain.PageNav{}, err
		}
		nav.HasPrev = !prev.Empty()
	}

	return nav, nil
}
