package graphimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/graph"
	"github.com/orgball2608/fb-post-manager/internal/metrics"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 8 << 20

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type GraphImpl struct {
	baseURL    *url.URL
	version    string
	httpClient *http.Client
	logger     logger.Logger
}

var _ graph.Client = (*GraphImpl)(nil)

func New(opts Opts) (*GraphImpl, error) {
	base, err := url.Parse(strings.TrimRight(opts.Config.Graph.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse graph base url: %w", err)
	}

	return &GraphImpl{
		baseURL: base,
		version: strings.Trim(opts.Config.Graph.Version, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Config.Graph.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: opts.Logger.WithComponent("GraphClient"),
	}, nil
}

// endpoint builds {base}/{version}/{parts...}.
func (g *GraphImpl) endpoint(parts ...string) *url.URL {
	u := *g.baseURL
	segments := []string{u.Path}
	if g.version != "" {
		segments = append(segments, g.version)
	}
	segments = append(segments, parts...)
	u.Path = strings.Join(segments, "/")
	u.RawPath = ""
	return &u
}

func (g *GraphImpl) GetConnections(ctx context.Context, token, id, edge string, params url.Values) (*graph.Connection, error) {
	u := g.endpoint(id, edge)
	q := cloneValues(params)
	q.Set("access_token", token)
	u.RawQuery = q.Encode()

	var conn graph.Connection
	if err := g.get(ctx, "get_connections", u.String(), &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (g *GraphImpl) GetInsights(ctx context.Context, token, metric string, ids []string) (domain.Insights, error) {
	insights := domain.Insights{}
	if len(ids) == 0 {
		return insights, nil
	}

	u := g.endpoint("insights", metric)
	q := url.Values{}
	q.Set("access_token", token)
	q.Set("ids", strings.Join(ids, ","))
	u.RawQuery = q.Encode()

	var raw map[string]struct {
		Data []domain.Insight `json:"data"`
	}
	if err := g.get(ctx, "get_insights", u.String(), &raw); err != nil {
		return nil, err
	}

	for id, entry := range raw {
		if len(entry.Data) == 0 {
			continue
		}
		insights[id] = entry.Data[0]
	}
	return insights, nil
}

func (g *GraphImpl) PutObject(ctx context.Context, token, parent, edge string, params url.Values) (*graph.PutResult, error) {
	form := cloneValues(params)
	form.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(parent, edge).String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result graph.PutResult
	if err := g.do(req, "put_object", &result); err != nil {
		return nil, err
	}
	g.logger.Info("Created graph object", "parent", parent, "edge", edge, "id", result.ID)
	return &result, nil
}

func (g *GraphImpl) Fetch(ctx context.Context, rawURL string) (*graph.Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "parse paging url")
	}
	if u.Host != g.baseURL.Host {
		return nil, errors.Wrap(errors.ErrInvalidInput, "paging url points to "+u.Host)
	}

	var conn graph.Connection
	if err := g.get(ctx, "fetch_page", u.String(), &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (g *GraphImpl) get(ctx context.Context, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return g.do(req, op, out)
}

func (g *GraphImpl) do(req *http.Request, op string, out any) error {
	start := time.Now()
	defer func() {
		metrics.GraphDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.GraphRequests.WithLabelValues(op, "network_error").Inc()
		g.logger.Error("Graph request failed", "operation", op, "error", err)
		return errors.Remote(errors.CodeRemoteNetwork, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.GraphRequests.WithLabelValues(op, "network_error").Inc()
		return errors.Remote(errors.CodeRemoteNetwork, op+": read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.GraphRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
		var envelope struct {
			Error *graph.APIError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			g.logger.Error("Graph API returned an error",
				"operation", op,
				"status", resp.StatusCode,
				"code", envelope.Error.Code,
				"message", envelope.Error.Message)
			return errors.Remote(errors.CodeRemoteAPI, op, envelope.Error)
		}
		g.logger.Error("Graph API returned unexpected status", "operation", op, "status", resp.StatusCode)
		return errors.Remote(errors.CodeRemoteHTTP, fmt.Sprintf("%s: unexpected status %d", op, resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.GraphRequests.WithLabelValues(op, "decode_error").Inc()
		g.logger.Error("Malformed Graph API response", "operation", op, "error", err)
		return errors.Remote(errors.CodeRemoteDecode, op+": decode response", err)
	}

	metrics.GraphRequests.WithLabelValues(op, "ok").Inc()
	return nil
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
