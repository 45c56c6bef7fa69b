package postsimpl

import (
	"context"
	"strconv"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/form"
	"github.com/orgball2608/fb-post-manager/internal/metrics"
	"github.com/orgball2608/fb-post-manager/internal/posts"
)

func (p *PostsImpl) Publish(ctx context.Context, s *domain.Session, sub form.Submission) (*posts.PublishResult, error) {
	active, err := s.ActivePage()
	if err != nil {
		return nil, err
	}

	kind := sub.Kind()
	res, err := p.Graph.PutObject(ctx, active.AccessToken, active.ID, kind.Edge(), sub.Params())
	if err != nil {
		p.Logger.Error("Failed to publish post", "kind", kind, "page", active.ID, "error", err)
		return nil, err
	}

	metrics.PostsPublished.WithLabelValues(string(kind), strconv.FormatBool(sub.Published())).Inc()
	p.Logger.Info("Post created", "kind", kind, "page", active.ID, "id", res.ID, "published", sub.Published())

	return &posts.PublishResult{
		ID:        res.ID,
		Kind:      kind,
		Published: sub.Published(),
	}, nil
}
