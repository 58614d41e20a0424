package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationIQProvider_Geocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "Gachibowli, Hyderabad", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"place_id":"42","display_name":"Gachibowli","lat":"17.4401","lon":"78.3489","type":"suburb"}]`))
	}))
	defer server.Close()

	provider, err := NewLocationIQProvider("test-key", server.URL)
	require.NoError(t, err)

	resp, err := provider.Geocode(context.Background(), "Gachibowli, Hyderabad")
	require.NoError(t, err)

	first, err := resp.First()
	require.NoError(t, err)
	assert.InDelta(t, 17.4401, first.Coordinates.Latitude, 1e-9)
	assert.InDelta(t, 78.3489, first.Coordinates.Longitude, 1e-9)
	assert.Equal(t, []string{"suburb"}, first.Types)
}

func TestLocationIQProvider_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	provider, err := NewLocationIQProvider("test-key", server.URL)
	require.NoError(t, err)

	_, err = provider.Geocode(context.Background(), "nowhere")
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestLocationIQProvider_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, err := NewLocationIQProvider("test-key", server.URL)
	require.NoError(t, err)

	_, err = provider.Geocode(context.Background(), "Hyderabad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResults))
	assert.Contains(t, err.Error(), "429")
}

func TestLocationIQProvider_RequiresKey(t *testing.T) {
	_, err := NewLocationIQProvider("", "")
	assert.Error(t, err)
}

func TestMapboxProvider_Geocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"features":[{"id":"place.1","place_name":"Hyderabad","place_type":["place"],"center":[78.47,17.38]}]}`))
	}))
	defer server.Close()

	provider := NewMapboxProvider("token")
	provider.baseURL = server.URL

	resp, err := provider.Geocode(context.Background(), "Hyderabad")
	require.NoError(t, err)
	first, err := resp.First()
	require.NoError(t, err)
	assert.InDelta(t, 17.38, first.Coordinates.Latitude, 1e-9)
	assert.InDelta(t, 78.47, first.Coordinates.Longitude, 1e-9)
}

func TestGeocodeResponse_FirstEmpty(t *testing.T) {
	var resp *GeocodeResponse
	_, err := resp.First()
	assert.ErrorIs(t, err, ErrNoResults)
}
