package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlack(t *testing.T, handler http.Handler) (*Slack, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := newSlack("slack", "xoxb-test", srv.Client(), 0)
	s.listURL = srv.URL + "/api/emoji.list"
	s.authURL = srv.URL + "/api/auth.test"
	return s, srv
}

func TestSlackList(t *testing.T) {
	s, _ := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"ok": true,
			"emoji": {
				"partyparrot": "https://emoji.example.com/partyparrot.gif",
				"wave": "https://emoji.example.com/wave.png",
				"hello": "alias:wave"
			}
		}`)
	}))

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Name order for reproducible output.
	assert.Equal(t, "hello", entries[0].Name)
	assert.Equal(t, "partyparrot", entries[1].Name)
	assert.Equal(t, "wave", entries[2].Name)

	// Alias resolved to the target's URL.
	assert.Equal(t, "https://emoji.example.com/wave.png", entries[0].URL)
	assert.Equal(t, "slack", entries[0].Namespace)
}

func TestSlackListAuthError(t *testing.T) {
	s, _ := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "invalid_auth"}`)
	}))

	_, err := s.List(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestSlackListRateLimited(t *testing.T) {
	s, _ := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := s.List(context.Background())
	require.Error(t, err)

	wait, ok := IsRateLimit(err)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, wait)
}

func TestSlackListServerError(t *testing.T) {
	s, _ := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := s.List(context.Background())
	require.Error(t, err)
	assert.False(t, IsAuth(err))
	assert.False(t, IsNotFound(err))
}

func TestSlackValidate(t *testing.T) {
	s, _ := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth.test":
			fmt.Fprint(w, `{"ok": true}`)
		case "/api/emoji.list":
			fmt.Fprint(w, `{"ok": true, "emoji": {"wave": "https://e.example.com/wave.png", "cat": "https://e.example.com/cat.png"}}`)
		}
	}))

	count, err := s.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSlackValidateBadToken(t *testing.T) {
	s, _ := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "token_revoked"}`)
	}))

	_, err := s.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestResolveAliases(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]string
		expected map[string]string
	}{
		{
			name: "single hop",
			raw: map[string]string{
				"wave":  "https://e/wave.png",
				"hello": "alias:wave",
			},
			expected: map[string]string{
				"wave":  "https://e/wave.png",
				"hello": "https://e/wave.png",
			},
		},
		{
			name: "chained aliases",
			raw: map[string]string{
				"wave": "https://e/wave.png",
				"hi":   "alias:hello",
				"hello": "alias:wave",
			},
			expected: map[string]string{
				"wave":  "https://e/wave.png",
				"hi":    "https://e/wave.png",
				"hello": "https://e/wave.png",
			},
		},
		{
			name: "cycle is dropped",
			raw: map[string]string{
				"a": "alias:b",
				"b": "alias:a",
			},
			expected: map[string]string{},
		},
		{
			name: "alias to missing target is dropped",
			raw: map[string]string{
				"ghost": "alias:thumbsup",
			},
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveAliases(tt.raw))
		})
	}
}

func TestSlackFetch(t *testing.T) {
	// 1x1 PNG header is enough for content sniffing.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wave.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		case "/gone.png":
			w.WriteHeader(http.StatusNotFound)
		case "/big.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(make([]byte, 2048))
		case "/error.html":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html>please sign in</html>")
		}
	}))
	defer srv.Close()

	s := newSlack("slack", "xoxb-test", srv.Client(), 1024)

	t.Run("Success", func(t *testing.T) {
		content, err := s.Fetch(context.Background(), Entry{Name: "wave", URL: srv.URL + "/wave.png"})
		require.NoError(t, err)
		assert.Equal(t, "image/png", content.ContentType)
		assert.Equal(t, png, content.Bytes)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Fetch(context.Background(), Entry{Name: "gone", URL: srv.URL + "/gone.png"})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("Oversize", func(t *testing.T) {
		_, err := s.Fetch(context.Background(), Entry{Name: "big", URL: srv.URL + "/big.png"})
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("NotAnImage", func(t *testing.T) {
		_, err := s.Fetch(context.Background(), Entry{Name: "error", URL: srv.URL + "/error.html"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not an image")
	})
}
