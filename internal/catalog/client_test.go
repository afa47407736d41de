package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/random", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("json"))
		w.Write([]byte(`{"id":101,"description":"random one","gifURL":"http://static/101.gif"}`))
	})
	mux.HandleFunc("/latest/0", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("json"))
		w.Write([]byte(`{"result":[{"id":1,"description":"a"},{"id":2,"description":"b"}],"totalCount":2}`))
	})
	mux.HandleFunc("/top/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[{"id":"9","description":"best"}],"totalCount":31}`))
	})
	mux.HandleFunc("/top/4", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such page", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = NewClient("http://example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/", c.BaseURL())
}

func TestRandom(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	g, err := c.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "101", g.ID)
	assert.Equal(t, "random one", g.Description)
	assert.Equal(t, "http://static/101.gif", g.GifURL)
}

func TestRandomEmptyItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Random(context.Background())
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestLatestAndTop(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	latest, err := c.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, latest.Result, 2)
	assert.Equal(t, "1", latest.Result[0].ID)
	assert.Equal(t, "b", latest.Result[1].Description)

	top, err := c.Top(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 31, top.TotalCount)
	assert.Equal(t, "9", top.Result[0].ID)
}

func TestStatusError(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Top(context.Background(), 4)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "no such page")
}

func TestNegativePage(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.Latest(context.Background(), -1)
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Random(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
