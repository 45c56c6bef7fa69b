package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/orgball2608/fb-post-manager/internal/domain"
)

// Connection is one page of a Graph API edge.
type Connection struct {
	Data   []json.RawMessage `json:"data"`
	Paging domain.Paging     `json:"paging"`
}

// Empty reports whether the page carries no records.
func (c *Connection) Empty() bool {
	return c == nil || len(c.Data) == 0
}

// Decode unmarshals every record of the page into out, which must point to a slice.
func (c *Connection) Decode(out any) error {
	raw, err := json.Marshal(c.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// PutResult is the answer of a create call.
type PutResult struct {
	ID     string `json:"id"`
	PostID string `json:"post_id,omitempty"`
}

// APIError is the error object the Graph API returns with non-2xx responses.
type APIError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FBTraceID    string `json:"fbtrace_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error %d (%s): %s", e.Code, e.Type, e.Message)
}

//go:generate go run go.uber.org/mock/mockgen -source=graph.go -destination=mocks/mock.go
type Client interface {
	// GetConnections reads one page of the edge of object id.
	GetConnections(ctx context.Context, token, id, edge string, params url.Values) (*Connection, error)

	// GetInsights fetches metric for all ids in a single call, keyed by id.
	GetInsights(ctx context.Context, token, metric string, ids []string) (domain.Insights, error)

	// PutObject creates a child object on the edge of parent.
	PutObject(ctx context.Context, token, parent, edge string, params url.Values) (*PutResult, error)

	// Fetch reads a paging URL returned by a previous call.
	Fetch(ctx context.Context, rawURL string) (*Connection, error)
}
