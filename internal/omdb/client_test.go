package omdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-etl/internal/omdb/omdbtest"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, provider *omdbtest.Provider) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(provider.Handler())
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL+"/", "key", time.Second, discardLogger())
	require.NoError(t, err)
	return client
}

func TestHTTPClientLookup(t *testing.T) {
	provider := omdbtest.NewProvider("key", omdbtest.Entry{
		Title:     "The Matrix",
		Year:      "1999",
		Director:  "Lana Wachowski, Lilly Wachowski",
		BoxOffice: "$172,076,928",
	})
	client := newTestClient(t, provider)
	year := 1999

	payload, err := client.Lookup(context.Background(), "The Matrix", &year)
	require.NoError(t, err)
	require.NotNil(t, payload.Director)
	assert.Equal(t, "Lana Wachowski, Lilly Wachowski", *payload.Director)
	assert.Nil(t, payload.Plot)

	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, omdbtest.Request{Title: "The Matrix", Year: "1999"}, reqs[0])
}

func TestHTTPClientEscapesTitle(t *testing.T) {
	provider := omdbtest.NewProvider("key", omdbtest.Entry{Title: "Tom & Jerry: The Movie?", Year: "1992"})
	client := newTestClient(t, provider)

	_, err := client.Lookup(context.Background(), "Tom & Jerry: The Movie?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry: The Movie?", provider.Requests()[0].Title)
	assert.Empty(t, provider.Requests()[0].Year)
}

func TestHTTPClientNotFound(t *testing.T) {
	client := newTestClient(t, omdbtest.NewProvider("key"))

	_, err := client.Lookup(context.Background(), "Nothing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPClientOtherProviderError(t *testing.T) {
	client := newTestClient(t, omdbtest.NewProvider("key"))

	_, err := client.Lookup(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHTTPClientBadStatus(t *testing.T) {
	provider := omdbtest.NewProvider("key")
	provider.FailWith(http.StatusInternalServerError)
	client := newTestClient(t, provider)

	_, err := client.Lookup(context.Background(), "Anything", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHTTPClientInvalidKey(t *testing.T) {
	provider := omdbtest.NewProvider("other")
	client := newTestClient(t, provider)

	_, err := client.Lookup(context.Background(), "Anything", nil)
	require.Error(t, err)
}

func TestHTTPClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "key", time.Second, discardLogger())
	require.NoError(t, err)
	_, err = client.Lookup(context.Background(), "Anything", nil)
	require.Error(t, err)
}

func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "key", 50*time.Millisecond, discardLogger())
	require.NoError(t, err)
	_, err = client.Lookup(context.Background(), "Slow", nil)
	require.Error(t, err)
}

func TestNewHTTPClientValidation(t *testing.T) {
	_, err := NewHTTPClient("http://www.omdbapi.com/", "", time.Second, nil)
	assert.Error(t, err)
	_, err = NewHTTPClient("not a url", "key", time.Second, nil)
	assert.Error(t, err)
}
