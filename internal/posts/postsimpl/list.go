package postsimpl

import (
	"context"
	"math"
	"net/url"
	"strconv"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
)

// Edges listing published and unpublished posts.
const (
	PublishedEdge   = "posts"
	UnpublishedEdge = "promotable_posts"
)

// MaxPage is the largest page index whose offset fits in an int.
const MaxPage = math.MaxInt / domain.PageSize

func (p *PostsImpl) ListAccounts(ctx context.Context, s *domain.Session) ([]domain.Page, error) {
	conn, err := p.Graph.GetConnections(ctx, s.UserAccessToken, "me", "accounts", nil)
	if err != nil {
		return nil, err
	}

	var accounts []domain.Page
	if err := conn.Decode(&accounts); err != nil {
		return nil, errors.Remote(errors.CodeRemoteDecode, "decode accounts", err)
	}

	s.Accounts = accounts
	p.Logger.Info("Fetched managed pages", "count", len(accounts))
	return accounts, nil
}

func (p *PostsImpl) ListPosts(ctx context.Context, s *domain.Session, published bool, page int) (*domain.PostList, error) {
	if page < 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "page index must not be negative")
	}
	if page > MaxPage {
		return nil, errors.Wrap(errors.ErrNotFound, "page index out of range")
	}

	active, err := s.ActivePage()
	if err != nil {
		return nil, err
	}

	edge := UnpublishedEdge
	if published {
		edge = PublishedEdge
	}

	params := url.Values{}
	params.Set("fields", domain.PostFields)
	params.Set("is_published", strconv.FormatBool(published))
	params.Set("limit", strconv.Itoa(domain.PageSize))
	params.Set("offset", strconv.Itoa(domain.PageSize*page))

	conn, err := p.Graph.GetConnections(ctx, active.AccessToken, active.ID, edge, params)
	if err != nil {
		return nil, err
	}

	var list []domain.Post
	if err := conn.Decode(&list); err != nil {
		return nil, errors.Remote(errors.CodeRemoteDecode, "decode posts", err)
	}

	ids := make([]string, 0, len(list))
	for _, post := range list {
		ids = append(ids, post.ID)
	}

	insights, err := p.Graph.GetInsights(ctx, active.AccessToken, p.InsightMetric, ids)
	if err != nil {
		return nil, err
	}

	for i := range list {
		found, err := NormalizePost(&list[i], active.ID, insights)
		if err != nil {
			return nil, errors.Wrap(err, "normalize post "+list[i].ID)
		}
		if !found {
			p.Logger.Warn("No insight for post, showing zero views", "post", list[i].ID, "metric", p.InsightMetric)
		}
	}

	nav, err := p.ResolvePaging(ctx, conn.Paging, page)
	if err != nil {
		return nil, err
	}

	return &domain.PostList{
		Posts:  list,
		Paging: conn.Paging,
		Nav:    nav,
	}, nil
}
