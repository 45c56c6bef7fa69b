package posts

import (
	"context"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/form"
)

// PublishResult is the outcome of a successful create call.
type PublishResult struct {
	ID        string
	Kind      domain.PostKind
	Published bool
}

//go:generate go run go.uber.org/mock/mockgen -source=posts.go -destination=mocks/mock.go
type Service interface {
	// ListAccounts fetches the pages the user administers and caches them in the session.
	ListAccounts(ctx context.Context, s *domain.Session) ([]domain.Page, error)

	// ListPosts returns page number `page` of the published or unpublished posts of the active page.
	ListPosts(ctx context.Context, s *domain.Session, published bool, page int) (*domain.PostList, error)

	// Publish creates the post described by a validated submission on the active page.
	Publish(ctx context.Context, s *domain.Session, sub form.Submission) (*PublishResult, error)
}
