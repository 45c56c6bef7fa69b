package graphimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/graph"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GraphImpl, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Graph.BaseURL = srv.URL
	cfg.Graph.Version = "v2.7"
	cfg.Graph.Timeout = 5 * time.Second

	client, err := New(Opts{
		Config: cfg,
		Logger: logger.New(logger.Opts{Env: "test", Writer: &bytes.Buffer{}}),
	})
	require.NoError(t, err)
	return client, srv
}

func TestGetConnections(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2.7/123/posts", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "page-token", q.Get("access_token"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))
		w.Write([]byte(`{
			"data": [{"id": "123_1", "message": "hello"}, {"id": "123_2"}],
			"paging": {"next": "https://graph.example/next", "cursors": {"before": "a", "after": "b"}}
		}`))
	})

	params := url.Values{"limit": {"10"}, "offset": {"20"}}
	conn, err := client.GetConnections(context.Background(), "page-token", "123", "posts", params)
	require.NoError(t, err)

	assert.Len(t, conn.Data, 2)
	assert.Equal(t, "https://graph.example/next", conn.Paging.Next)
	assert.False(t, conn.Paging.HasPreviousURL())
	assert.Empty(t, params.Get("access_token"), "caller params are not mutated")

	var rows []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	require.NoError(t, conn.Decode(&rows))
	assert.Equal(t, "hello", rows[0].Message)
}

func TestGetInsights(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2.7/insights/post_impressions_unique", r.URL.Path)
		assert.Equal(t, "123_1,123_2", r.URL.Query().Get("ids"))
		w.Write([]byte(`{
			"123_1": {"data": [{"name": "post_impressions_unique", "period": "lifetime", "values": [{"value": 42}]}]},
			"123_2": {"data": []}
		}`))
	})

	insights, err := client.GetInsights(context.Background(), "tok", "post_impressions_unique", []string{"123_1", "123_2"})
	require.NoError(t, err)

	v, ok := insights["123_1"].FirstValue()
	assert.True(t, ok)
	assert.EqualValues(t, 42, v)
	_, present := insights["123_2"]
	assert.False(t, present)
}

func TestGetInsightsWithoutIDsSkipsCall(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	insights, err := client.GetInsights(context.Background(), "tok", "post_impressions_unique", nil)
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestPutObject(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2.7/123/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tok", r.PostForm.Get("access_token"))
		assert.Equal(t, "hi", r.PostForm.Get("message"))
		assert.Equal(t, "false", r.PostForm.Get("published"))
		json.NewEncoder(w).Encode(map[string]string{"id": "123_9"})
	})

	res, err := client.PutObject(context.Background(), "tok", "123", "feed", url.Values{
		"message":   {"hi"},
		"published": {"false"},
	})
	require.NoError(t, err)
	assert.Equal(t, "123_9", res.ID)
}

func TestRemoteFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		apiCode int
	}{
		{"graph error payload", http.StatusBadRequest, `{"error": {"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190}}`, errors.CodeRemoteAPI, 190},
		{"bare 500", http.StatusInternalServerError, `oops`, errors.CodeRemoteHTTP, 0},
		{"malformed json", http.StatusOK, `{"data": [`, errors.CodeRemoteDecode, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetConnections(context.Background(), "tok", "123", "posts", nil)
			require.Error(t, err)
			assert.True(t, errors.IsRemoteCall(err))
			assert.Equal(t, tt.code, errors.GetCode(err))

			var apiErr *graph.APIError
			if tt.apiCode != 0 {
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.apiCode, apiErr.Code)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.PutObject(context.Background(), "tok", "123", "feed", nil)
	require.Error(t, err)
	assert.True(t, errors.IsRemoteCall(err))
	assert.Equal(t, errors.CodeRemoteNetwork, errors.GetCode(err))
}

func TestFetch(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cursor", r.URL.Query().Get("after"))
		w.Write([]byte(`{"data": []}`))
	})

	conn, err := client.Fetch(context.Background(), srv.URL+"/v2.7/123/posts?after=cursor&access_token=tok")
	require.NoError(t, err)
	assert.True(t, conn.Empty())

	_, err = client.Fetch(context.Background(), "https://elsewhere.example/v2.7/123/posts")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
