package postsimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/form"
	"github.com/orgball2608/fb-post-manager/internal/graph"
	mock_graph "github.com/orgball2608/fb-post-manager/internal/graph/mocks"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const metric = "post_impressions_unique"

func newTestPosts(t *testing.T) (*PostsImpl, *mock_graph.MockClient) {
	t.Helper()
	client := mock_graph.NewMockClient(gomock.NewController(t))

	cfg := &config.Config{}
	cfg.Graph.InsightMetric = metric

	return New(Opts{
		Graph:  client,
		Logger: logger.New(logger.Opts{Env: "test", Writer: &bytes.Buffer{}}),
		Config: cfg,
	}), client
}

func activeSession() *domain.Session {
	return &domain.Session{
		ID:              "sid",
		UserAccessToken: "user-token",
		PageID:          "123",
		PageName:        "Bakery",
		PageAccessToken: "page-token",
	}
}

func connection(t *testing.T, paging domain.Paging, records ...any) *graph.Connection {
	t.Helper()
	conn := &graph.Connection{Paging: paging}
	for _, r := range records {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		conn.Data = append(conn.Data, raw)
	}
	return conn
}

func rawPost(id string) map[string]any {
	return map[string]any{
		"id":           id,
		"message":      "hello " + id,
		"is_published": true,
		"created_time": "2024-01-05T10:00:00+0000",
		"status_type":  "mobile_status_update",
	}
}

func TestListPublishedFirstPage(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()

	records := make([]any, 0, domain.PageSize)
	ids := make([]string, 0, domain.PageSize)
	insights := domain.Insights{}
	for i := 1; i <= domain.PageSize; i++ {
		id := fmt.Sprintf("123_%d", i)
		records = append(records, rawPost(id))
		ids = append(ids, id)
		insights[id] = domain.Insight{ID: id, Values: []domain.InsightValue{{Value: int64(i * 100)}}}
	}
	paging := domain.Paging{Next: "https://graph.facebook.com/v2.7/123/posts?offset=10"}

	wantParams := url.Values{
		"fields":       {domain.PostFields},
		"is_published": {"true"},
		"limit":        {"10"},
		"offset":       {"0"},
	}
	client.EXPECT().GetConnections(ctx, "page-token", "123", PublishedEdge, wantParams).
		Return(connection(t, paging, records...), nil)
	client.EXPECT().GetInsights(ctx, "page-token", metric, ids).Return(insights, nil)
	client.EXPECT().Fetch(ctx, paging.Next).Return(connection(t, domain.Paging{}, rawPost("123_11")), nil)

	list, err := p.ListPosts(ctx, activeSession(), true, 0)
	require.NoError(t, err)

	require.Len(t, list.Posts, domain.PageSize)
	assert.Equal(t, "1", list.Posts[0].PostID)
	assert.Equal(t, int64(100), list.Posts[0].ViewCount)
	assert.Equal(t, int64(1000), list.Posts[9].ViewCount)
	assert.Equal(t, domain.PageNav{Current: 0, Next: 1, HasNext: true, Previous: -1, HasPrev: false}, list.Nav)
}

func TestListUnpublishedUsesPromotablePosts(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()

	wantParams := url.Values{
		"fields":       {domain.PostFields},
		"is_published": {"false"},
		"limit":        {"10"},
		"offset":       {"20"},
	}
	client.EXPECT().GetConnections(ctx, "page-token", "123", UnpublishedEdge, wantParams).
		Return(connection(t, domain.Paging{}, rawPost("123_7")), nil)
	client.EXPECT().GetInsights(ctx, "page-token", metric, []string{"123_7"}).Return(domain.Insights{}, nil)

	list, err := p.ListPosts(ctx, activeSession(), false, 2)
	require.NoError(t, err)
	require.Len(t, list.Posts, 1)
	assert.Zero(t, list.Posts[0].ViewCount, "missing insight defaults to zero")
	assert.False(t, list.Nav.HasNext)
	assert.False(t, list.Nav.HasPrev)
}

func TestListPostsRequiresSelectedPage(t *testing.T) {
	p, _ := newTestPosts(t)

	_, err := p.ListPosts(context.Background(), &domain.Session{UserAccessToken: "user-token"}, true, 0)
	assert.ErrorIs(t, err, errors.ErrPageNotSelected)

	_, err = p.ListPosts(context.Background(), activeSession(), true, -1)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestListPostsRejectsOverflowingPage(t *testing.T) {
	p, _ := newTestPosts(t)

	for _, page := range []int{MaxPage + 1, 922337203685477581, math.MaxInt} {
		_, err := p.ListPosts(context.Background(), activeSession(), true, page)
		assert.True(t, errors.IsNotFound(err), "page %d", page)
	}
}

func TestListPostsLastValidPage(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()

	client.EXPECT().GetConnections(ctx, "page-token", "123", PublishedEdge, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _ string, params url.Values) (*graph.Connection, error) {
			assert.Equal(t, strconv.Itoa(MaxPage*domain.PageSize), params.Get("offset"))
			return &graph.Connection{}, nil
		})
	client.EXPECT().GetInsights(ctx, "page-token", metric, []string{}).Return(domain.Insights{}, nil)

	list, err := p.ListPosts(ctx, activeSession(), true, MaxPage)
	require.NoError(t, err)
	assert.Empty(t, list.Posts)
}

func TestListPostsPropagatesRemoteFailure(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()

	remote := errors.Remote(errors.CodeRemoteHTTP, "graph returned 500", fmt.Errorf("boom"))
	client.EXPECT().GetConnections(ctx, "page-token", "123", PublishedEdge, gomock.Any()).Return(nil, remote)

	_, err := p.ListPosts(ctx, activeSession(), true, 0)
	assert.True(t, errors.IsRemoteCall(err))
}

func TestResolvePaging(t *testing.T) {
	ctx := context.Background()
	next := "https://graph.facebook.com/next"
	prev := "https://graph.facebook.com/prev"

	t.Run("no next key", func(t *testing.T) {
		p, _ := newTestPosts(t)
		nav, err := p.ResolvePaging(ctx, domain.Paging{}, 3)
		require.NoError(t, err)
		assert.False(t, nav.HasNext)
		assert.False(t, nav.HasPrev)
		assert.Equal(t, 4, nav.Next)
		assert.Equal(t, 2, nav.Previous)
	})

	t.Run("next probe empty", func(t *testing.T) {
		p, client := newTestPosts(t)
		client.EXPECT().Fetch(ctx, next).Return(&graph.Connection{}, nil)
		nav, err := p.ResolvePaging(ctx, domain.Paging{Next: next}, 0)
		require.NoError(t, err)
		assert.False(t, nav.HasNext)
	})

	t.Run("both neighbours", func(t *testing.T) {
		p, client := newTestPosts(t)
		client.EXPECT().Fetch(ctx, next).Return(connection(t, domain.Paging{}, rawPost("123_1")), nil)
		client.EXPECT().Fetch(ctx, prev).Return(connection(t, domain.Paging{}, rawPost("123_2")), nil)
		nav, err := p.ResolvePaging(ctx, domain.Paging{Next: next, Previous: prev}, 1)
		require.NoError(t, err)
		assert.True(t, nav.HasNext)
		assert.True(t, nav.HasPrev)
	})

	t.Run("previous probe empty", func(t *testing.T) {
		p, client := newTestPosts(t)
		client.EXPECT().Fetch(ctx, prev).Return(&graph.Connection{}, nil)
		nav, err := p.ResolvePaging(ctx, domain.Paging{Previous: prev}, 2)
		require.NoError(t, err)
		assert.False(t, nav.HasPrev)
		assert.Equal(t, 1, nav.Previous)
	})

	t.Run("previous ignored on first page", func(t *testing.T) {
		p, _ := newTestPosts(t)
		nav, err := p.ResolvePaging(ctx, domain.Paging{Previous: prev}, 0)
		require.NoError(t, err)
		assert.False(t, nav.HasPrev)
	})

	t.Run("probe failure", func(t *testing.T) {
		p, client := newTestPosts(t)
		client.EXPECT().Fetch(ctx, next).Return(nil, errors.Remote(errors.CodeRemoteNetwork, "network", fmt.Errorf("reset")))
		_, err := p.ResolvePaging(ctx, domain.Paging{Next: next}, 0)
		assert.True(t, errors.IsRemoteCall(err))
	})
}

func TestListAccountsCachesPages(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()
	s := &domain.Session{UserAccessToken: "user-token"}

	client.EXPECT().GetConnections(ctx, "user-token", "me", "accounts", url.Values(nil)).Return(connection(t, domain.Paging{},
		domain.Page{ID: "123", Name: "Bakery", AccessToken: "page-token"},
		domain.Page{ID: "456", Name: "Garage", AccessToken: "other-token"},
	), nil)

	pages, err := p.ListAccounts(ctx, s)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, pages, s.Accounts)
}

func TestPublishLinkPost(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()

	sub, errs, err := form.Decode(domain.PostKindLink, url.Values{
		"is_published": {"True"},
		"message":      {"ignored for links"},
		"link_url":     {"https://example.com/article"},
		"link_name":    {"Article"},
		"picture":      {"https://example.com/pic.jpg"},
	})
	require.NoError(t, err)
	require.Empty(t, errs)

	client.EXPECT().PutObject(ctx, "page-token", "123", "feed", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _ string, params url.Values) (*graph.PutResult, error) {
			assert.Equal(t, "true", params.Get("published"))
			assert.Equal(t, "https://example.com/article", params.Get("link"))
			assert.Equal(t, "Article", params.Get("name"))
			return &graph.PutResult{ID: "123_999"}, nil
		})

	res, err := p.Publish(ctx, activeSession(), sub)
	require.NoError(t, err)
	assert.Equal(t, "123_999", res.ID)
	assert.True(t, res.Published)
	assert.Equal(t, domain.PostKindLink, res.Kind)
}

func TestPublishVideoUnpublished(t *testing.T) {
	p, client := newTestPosts(t)
	ctx := context.Background()

	sub, errs, err := form.Decode(domain.PostKindVideo, url.Values{
		"is_published": {"False"},
		"message":      {"new trailer"},
		"title":        {"Trailer"},
		"video_url":    {"https://example.com/v.mp4"},
	})
	require.NoError(t, err)
	require.Empty(t, errs)

	client.EXPECT().PutObject(ctx, "page-token", "123", "videos", url.Values{
		"message":   {"new trailer"},
		"file_url":  {"https://example.com/v.mp4"},
		"title":     {"Trailer"},
		"published": {"false"},
	}).Return(&graph.PutResult{ID: "555"}, nil)

	res, err := p.Publish(ctx, activeSession(), sub)
	require.NoError(t, err)
	assert.False(t, res.Published)
}

func TestPublishWithoutPageMakesNoCall(t *testing.T) {
	p, _ := newTestPosts(t)

	sub, _, err := form.Decode(domain.PostKindStatus, url.Values{"is_published": {"True"}, "message": {"hi"}})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), &domain.Session{}, sub)
	assert.ErrorIs(t, err, errors.ErrPageNotSelected)
}
