package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "json", r.URL.Query().Get("format"))
		require.Equal(t, "1", r.URL.Query().Get("limit"))
		require.Equal(t, "delivery_eta", r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"lat":"12.9352","lon":"77.6245","display_name":"Koramangala, Bangalore"}]`))
	}))
	defer server.Close()

	c := New(BaseUrlOption(server.URL))
	coord, err := c.GeoCode(context.Background(), "Koramangala, Bangalore")
	require.NoError(t, err)
	assert.Equal(t, 12.9352, coord.Latitude)
	assert.Equal(t, 77.6245, coord.Longitude)
}

func TestGeoCodeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(BaseUrlOption(server.URL))
	coord, err := c.GeoCode(context.Background(), "gibberish query")
	require.NoError(t, err)
	assert.Nil(t, coord)
}

func TestGeoCodeBadCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"77.6245"}]`))
	}))
	defer server.Close()

	c := New(BaseUrlOption(server.URL))
	_, err := c.GeoCode(context.Background(), "Koramangala, Bangalore")
	assert.Error(t, err)
}
