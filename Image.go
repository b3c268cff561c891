package main

import (
	"context"
	"encoding/json"
)

type ImageData struct {
	Id          string `json:"id"`
	DisplayUrl  string `json:"displayUrl"`
	AltText     string `json:"altText"`
	Attribution string `json:"attributionName"`
}

// PhotoSearcher returns one page of search results for query.
type PhotoSearcher interface {
	SearchPhotos(ctx context.Context, query string, page int) (*SearchResult, error)
}

type SearchResult struct {
	Images     []ImageData
	Total      int
	TotalPages int
	// Raw is the undecoded response body, the payload kept by the cache.
	Raw json.RawMessage
}
