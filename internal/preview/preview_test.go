package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchExtractsTitleAndExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title> Example Article </title></head>
<body>
  <p>   </p>
  <p>First <b>real</b> paragraph with
  wrapped lines.</p>
  <p>Second paragraph.</p>
</body></html>`))
	}))
	defer srv.Close()

	page, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Example Article", page.Title)
	assert.Equal(t, "First real paragraph with wrapped lines.", page.Excerpt)
	assert.Equal(t, srv.URL, page.URL)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher().Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestFetchClipsLongExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer srv.Close()

	page, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Excerpt), excerptLimit+3)
	assert.True(t, strings.HasSuffix(page.Excerpt, "..."))
}

func TestFetchRespectsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher().Fetch(ctx, srv.URL)
	assert.Error(t, err)
}
