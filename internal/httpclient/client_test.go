package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	var gotPath, gotQuery, gotUA, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Extra")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL}, nil)

	body, err := c.Get(context.Background(), "/games/newest",
		WithQuery(url.Values{"page": {"2"}}),
		WithHeader("X-Extra", "yes"),
	)
	require.NoError(t, err)

	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, "/games/newest", gotPath)
	assert.Equal(t, "page=2", gotQuery)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "yes", gotExtra)
}

func TestClientGetAbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: "http://127.0.0.1:1"}, nil)

	body, err := c.Get(context.Background(), srv.URL+"/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", body)
}

func TestClientPost(t *testing.T) {
	var gotContentType string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte("created"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL}, nil)

	body, err := c.Post(context.Background(), "/submit", map[string]string{"q": "horror"})
	require.NoError(t, err)

	assert.Equal(t, "created", body)
	assert.Contains(t, gotContentType, "application/json")
	assert.Equal(t, "horror", gotBody["q"])
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		opts    []RequestOption
		status  int
	}{
		{
			name: "not found status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			status: http.StatusNotFound,
		},
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			status: http.StatusBadGateway,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			opts: []RequestOption{WithTimeout(20 * time.Millisecond)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(Options{BaseURL: srv.URL}, nil)

			_, err := c.Get(context.Background(), "/x", tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRequestFailed))

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, "GET", reqErr.Method)
		})
	}
}

func TestClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, Timeout: time.Second}, nil)

	_, err := c.Get(context.Background(), "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "http request failed")
}
