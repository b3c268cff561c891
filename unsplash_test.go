package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApi(t *testing.T, key string, handler http.HandlerFunc) (*UnsplashApi, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.Unsplash.AccessKey = key
	cfg.Unsplash.BaseUrl = srv.URL + "/search/photos"
	return NewUnsplashApi(cfg), &hits
}

func TestFetchPhotosMissingKey(t *testing.T) {
	api, hits := testApi(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("Fetch should not be called")
	})

	_, err := api.FetchPhotos(context.Background(), "test", 1)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
	assert.Contains(t, err.Error(), "Unsplash API key is not configured")
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetchPhotosRequest(t *testing.T) {
	api, hits := testApi(t, "test-api-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "red cars", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Client-ID test-api-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"total": 41,
			"total_pages": 3,
			"results": [
				{"id": "a1", "alt_description": "A red car", "urls": {"regular": "https://example.com/a1.jpg"}, "user": {"name": "Ann"}},
				{"id": "b2", "alt_description": null, "urls": {"regular": "https://example.com/b2.jpg"}, "user": {"name": "Bob"}}
			]
		}`)
	})

	res, err := api.FetchPhotos(context.Background(), "red cars", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 41, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Images, 2)
	assert.Equal(t, ImageData{
		Id:          "a1",
		DisplayUrl:  "https://example.com/a1.jpg",
		AltText:     "A red car",
		Attribution: "Ann",
	}, res.Images[0])
	assert.Equal(t, "Image by Bob", res.Images[1].AltText)
	assert.NotEmpty(t, res.Raw)
}

func TestFetchPhotosNonSuccess(t *testing.T) {
	api, _ := testApi(t, "test-api-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "Rate Limit Exceeded")
	})

	_, err := api.FetchPhotos(context.Background(), "test", 1)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "expected RequestError, got %v", err)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Equal(t, "Forbidden", reqErr.Status)
	assert.Equal(t, "Failed to fetch images: Forbidden", err.Error())
}

func TestFetchPhotosBadBody(t *testing.T) {
	api, _ := testApi(t, "test-api-key", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>")
	})

	_, err := api.FetchPhotos(context.Background(), "test", 1)
	assert.ErrorContains(t, err, "decoding response")
}
