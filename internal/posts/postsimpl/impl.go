package postsimpl

import (
	"github.com/orgball2608/fb-post-manager/internal/graph"
	"github.com/orgball2608/fb-post-manager/internal/posts"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Graph  graph.Client
	Logger logger.Logger
	Config *config.Config
}

type PostsImpl struct {
	Graph         graph.Client
	Logger        logger.Logger
	InsightMetric string
}

func New(opts Opts) *PostsImpl {
	return &PostsImpl{
		Graph:         opts.Graph,
		Logger:        opts.Logger.WithComponent("Posts"),
		InsightMetric: opts.Config.Graph.InsightMetric,
	}
}

var _ posts.Service = (*PostsImpl)(nil)
